package counter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ListCounter counts rule lines in remote filter lists.
type ListCounter struct {
	Client *http.Client
}

// NewListCounter creates a ListCounter with optional proxy support.
func NewListCounter(timeout time.Duration, proxyURL string) *ListCounter {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &ListCounter{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Fetch downloads one list and counts its rules.
func (c *ListCounter) Fetch(ctx context.Context, listURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch list: status %d", resp.StatusCode)
	}
	return CountLines(resp.Body)
}

// CountAll counts every list, keyed by name. Lists that fail are logged and
// left out of the result.
func (c *ListCounter) CountAll(ctx context.Context, lists map[string]string) map[string]int {
	names := make([]string, 0, len(lists))
	for name := range lists {
		names = append(names, name)
	}
	sort.Strings(names)

	counts := make(map[string]int, len(lists))
	for _, name := range names {
		n, err := c.Fetch(ctx, lists[name])
		if err != nil {
			log.Printf("[WARN] rule list %s: %v", name, err)
			continue
		}
		counts[name] = n
	}
	return counts
}

// CountLines counts non-blank lines that are not comments ("#" or "!").
func CountLines(r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read list: %w", err)
	}
	return n, nil
}
