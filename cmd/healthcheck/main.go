// Command healthcheck probes the gateway health endpoint and exits non-zero
// when it is unreachable or unhealthy. It is meant for container HEALTHCHECK
// directives, where no shell or curl is available.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

const probeTimeout = 2 * time.Second

func main() {
	os.Exit(check(normalizeAddr(os.Getenv("AIP_LISTEN_ADDR"))))
}

func check(addr string) int {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s/api/v1/health", addr), nil)
	if err != nil {
		return 1
	}

	resp, err := (&http.Client{Timeout: probeTimeout}).Do(req)
	if err != nil {
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil || body.Status != "ok" {
		return 1
	}

	return 0
}

// normalizeAddr points the probe at loopback when the gateway binds all
// interfaces, since the probe runs on the same host.
func normalizeAddr(raw string) string {
	const fallback = "127.0.0.1:8080"
	if raw == "" {
		return fallback
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return fallback
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
