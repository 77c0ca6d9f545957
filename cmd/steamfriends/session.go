package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

// sessionTimeout bounds a single connect or disconnect call.
const sessionTimeout = 10 * time.Second

// sessionAction reports a connect or disconnect event to a running server.
func sessionAction(ctx context.Context, c *cli.Command, connected bool) error {
	steamID := c.Args().First()
	if steamID == "" {
		return ErrMissingSteamID
	}

	method := http.MethodPut
	if !connected {
		method = http.MethodDelete
	}

	endpoint := strings.TrimSuffix(c.String("server"), "/") + "/v1/sessions/" + url.PathEscape(steamID)

	ctx, cancel := context.WithTimeout(ctx, sessionTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	fmt.Println(strings.TrimSpace(string(body)))

	return nil
}
