package config

import (
	"net"
	"net/url"
	"os"
	"sync"
)

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker returns true if the application is running inside a Docker container.
// Detection is based on the presence of /.dockerenv file which exists in all Docker containers.
// The result is cached after the first call.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

// ResolveHostForDocker returns the appropriate host address for connecting to external services.
// If running in Docker and the host is "localhost" or "127.0.0.1", it returns "host.docker.internal"
// to allow connections to databases running on the host machine.
func ResolveHostForDocker(host string) string {
	return resolveHost(host, IsRunningInDocker())
}

// ResolveURLForDocker rewrites the host of a connection URL in place using
// ResolveHostForDocker, preserving any port.
func ResolveURLForDocker(u *url.URL) {
	if u == nil || u.Host == "" {
		return
	}
	u.Host = resolveURLHost(u.Host, IsRunningInDocker())
}

func resolveURLHost(hostport string, inDocker bool) string {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return resolveHost(hostport, inDocker)
	}
	return net.JoinHostPort(resolveHost(host, inDocker), port)
}

func resolveHost(host string, inDocker bool) string {
	if !inDocker {
		return host
	}
	if host == "localhost" || host == "127.0.0.1" {
		return "host.docker.internal"
	}
	return host
}
