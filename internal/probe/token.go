package probe

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/raysh454/ssoprobe/internal/interfaces"
	"github.com/raysh454/ssoprobe/internal/logging"
	"github.com/raysh454/ssoprobe/internal/model"
	"github.com/raysh454/ssoprobe/internal/utils"
)

const (
	TokenPath   = "/jwt"
	CommandPath = "/api/post"
)

// tokenField is the exact key of the token endpoint's payload.
const tokenField = "Token"

// Token fetches a bearer token and turns it into a curl command line.
type Token struct {
	wc     interfaces.WebClient
	logger logging.Logger
}

func NewToken(wc interfaces.WebClient, logger logging.Logger) *Token {
	return &Token{
		wc:     wc,
		logger: logger.With(logging.Field{Key: "probe", Value: string(model.ProbeToken)}),
	}
}

// ComposeCommand builds the displayable command for token against origin.
func ComposeCommand(token, origin string) string {
	return fmt.Sprintf("curl -H 'Authorization: Bearer %s' %s%s", token, origin, CommandPath)
}

// NewTokenCommand is ComposeCommand with its inputs kept alongside.
func NewTokenCommand(token, origin string) *model.TokenCommand {
	return &model.TokenCommand{
		Token:   token,
		Origin:  origin,
		Command: ComposeCommand(token, origin),
	}
}

// Run requests a token from the page's own origin.
func (t *Token) Run(ctx context.Context, page *url.URL) (*model.TokenCommand, error) {
	if t.wc == nil {
		return nil, fmt.Errorf("%w: webclient is nil", ErrRequest)
	}
	if page == nil || page.Host == "" {
		return nil, fmt.Errorf("%w: page host is required", ErrRequest)
	}
	origin := utils.Origin(page)

	resp, err := getJSON(ctx, t.wc, origin+TokenPath)
	if err != nil {
		return nil, err
	}

	tok, err := decodeToken(resp.Body)
	if err != nil {
		return nil, err
	}

	t.logger.Info("composed bearer command", logging.Field{Key: "origin", Value: origin})
	return NewTokenCommand(tok, origin), nil
}

// decodeToken extracts the "Token" string. Keys match case-sensitively, the
// way the page reads data.Token.
func decodeToken(body []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", fmt.Errorf("%w: token body: %w", ErrParse, err)
	}
	raw, ok := fields[tokenField]
	if !ok {
		return "", fmt.Errorf("%w: token body has no %s field", ErrParse, tokenField)
	}
	var tok string
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", fmt.Errorf("%w: %s is not a string: %w", ErrParse, tokenField, err)
	}
	if tok == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrParse, tokenField)
	}
	return tok, nil
}
