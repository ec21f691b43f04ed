package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/acervomestre/acervo/internal/services"
	"github.com/acervomestre/acervo/internal/shared"
)

// APIGet sends a raw GET to the backend with the stored session.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	return r.passthrough(ctx, cmd, "GET", nil, !cmd.Bool("json"))
}

// APIPost sends a raw POST. --data takes inline JSON or @path to read it from a file.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	body := []byte(cmd.String("data"))
	if path, ok := strings.CutPrefix(string(body), "@"); ok {
		data, err := shared.VerifyAndReadFile(path)
		if err != nil {
			return err
		}
		body = data
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: --data", shared.ErrMissingArgument)
	}
	if !json.Valid(body) {
		return fmt.Errorf("%w: --data is not valid JSON", shared.ErrInvalidInput)
	}
	return r.passthrough(ctx, cmd, "POST", body, true)
}

func (r *Runner) passthrough(ctx context.Context, cmd *cli.Command, method string, body []byte, pretty bool) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if _, err := r.client(); err != nil {
		return err
	}

	r.logger.Info("raw request", "method", method, "path", path)

	var resp *services.APIResponse
	var err error
	if method == "POST" {
		resp, err = r.api.Post(ctx, path, body)
	} else {
		resp, err = r.api.Get(ctx, path)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s returned %d: %s", shared.ErrAPIRequest, method, path, resp.StatusCode, resp.Body)
	}
	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}
	return r.writePlain("%s\n", resp.Body)
}
