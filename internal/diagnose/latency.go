package diagnose

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	pingAttempts    = 1
	headAttempts    = 1
	headTimeout     = 3 * time.Second
	portDialTimeout = 3 * time.Second
)

// measureLatency collects the three independent reachability figures. Each one
// is best-effort; a failed measurement renders as unavailable and never aborts
// the diagnosis.
func measureLatency(base, host, apiKey string) LatencyStats {
	var stats LatencyStats
	stats.PingMs, stats.PingLossPct, stats.PingOK = pingAverage(host, pingAttempts)
	stats.HTTPMs, stats.HTTPOK = httpHeadAverage(base+EndpointModels, host, apiKey, headAttempts)

	stats.PortChecked = true
	start := time.Now()
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, "443"), portDialTimeout)
	if err == nil {
		stats.PortMs = float64(time.Since(start)) / float64(time.Millisecond)
		stats.PortOK = true
		conn.Close()
	}
	return stats
}

// pingTimeRegex matches the round-trip figure of both English and localized
// system ping output.
var pingTimeRegex = regexp.MustCompile(`(?i)(?:time|时间)[=<]?\s*(\d+)\s*ms`)

// pingOnce shells out to the system ping; raw ICMP sockets need privileges the
// desktop process does not have.
func pingOnce(host string) (int, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "ping", "-n", "1", "-w", "1000", host)
	} else {
		cmd = exec.CommandContext(ctx, "ping", "-c", "1", "-W", "1", host)
	}
	out, err := cmd.CombinedOutput()
	if err != nil && len(out) == 0 {
		return 0, false
	}
	match := pingTimeRegex.FindSubmatch(out)
	if match == nil {
		return 0, false
	}
	value, err := strconv.Atoi(string(match[1]))
	if err != nil {
		return 0, false
	}
	return value, true
}

// pingAverage averages a fixed number of pings; failures count toward the loss
// percentage rather than aborting.
func pingAverage(host string, attempts int) (avg float64, lossPct float64, ok bool) {
	if attempts <= 0 {
		return 0, 100, false
	}
	var times []int
	failures := 0
	for i := 0; i < attempts; i++ {
		value, ok := pingOnce(host)
		if !ok {
			failures++
			continue
		}
		times = append(times, value)
	}
	lossPct = float64(failures) / float64(attempts) * 100
	if len(times) == 0 {
		return 0, lossPct, false
	}
	sum := 0
	for _, v := range times {
		sum += v
	}
	return float64(sum) / float64(len(times)), lossPct, true
}

// httpHeadAverage times HEAD requests to the models endpoint. TLS verification
// is skipped upfront for bare IP hosts, which rarely present valid
// certificates; named hosts get a verify-then-retry-unverified fallback.
func httpHeadAverage(url, host, apiKey string, attempts int) (float64, bool) {
	if attempts <= 0 {
		return 0, false
	}
	verify := !IsIPLiteral(host)
	client := headClient(verify)

	var times []float64
	for i := 0; i < attempts; i++ {
		start := time.Now()
		resp, err := doHead(client, url, apiKey)
		if err != nil {
			if !verify || !isTLSError(err) {
				return 0, false
			}
			verify = false
			client = headClient(false)
			resp, err = doHead(client, url, apiKey)
			if err != nil {
				return 0, false
			}
		}
		resp.Body.Close()
		times = append(times, float64(time.Since(start))/float64(time.Millisecond))
	}

	sum := 0.0
	for _, v := range times {
		sum += v
	}
	return sum / float64(len(times)), true
}

func headClient(verify bool) *http.Client {
	client := &http.Client{Timeout: headTimeout}
	if !verify {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return client
}

func doHead(client *http.Client, url, apiKey string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	return client.Do(req)
}

func isTLSError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return true
	}
	var authErr x509.UnknownAuthorityError
	if errors.As(err, &authErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "tls:") || strings.Contains(msg, "certificate")
}
