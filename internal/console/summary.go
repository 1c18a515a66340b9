package console

import (
	"fmt"
	"strings"

	"github.com/raysh454/ssoprobe/internal/model"
)

// Summary renders a finished activation as the text its region would show.
func Summary(res *model.ProbeResult) string {
	if res == nil {
		return ""
	}
	if res.Status == model.StatusSuperseded {
		return fmt.Sprintf("%s: superseded", res.Kind)
	}

	var failure string
	if res.Status == model.StatusFailed {
		failure = errorText(resultError{kind: res.ErrorKind, msg: res.Error})
	}

	var b strings.Builder
	switch res.Kind {
	case model.ProbeEcho:
		if failure != "" || res.Echo == nil {
			fmt.Fprintf(&b, "%s: %s", IDEchoResult, failure)
			break
		}
		fmt.Fprintf(&b, "%s: %s", IDEchoResult, res.Echo.Payload)
	case model.ProbeFrame:
		if res.Frame != nil {
			fmt.Fprintf(&b, "%s src=%s", IDFrame, res.Frame.URL)
			if res.Frame.Loaded {
				b.WriteString(" (loaded)")
			}
		}
		if failure != "" {
			fmt.Fprintf(&b, " %s", failure)
		}
	case model.ProbeFetch:
		if failure != "" || res.Fetch == nil {
			fmt.Fprintf(&b, "%s: %s", IDFetchResult, failure)
			break
		}
		fmt.Fprintf(&b, "%s: %s", IDFetchResult, res.Fetch.Data)
		for _, h := range res.Fetch.Headers {
			fmt.Fprintf(&b, "\n  %s: %s", h.Name, h.Value)
		}
	case model.ProbeToken:
		if failure != "" || res.Token == nil {
			fmt.Fprintf(&b, "%s: %s", IDTokenResult, failure)
			break
		}
		fmt.Fprintf(&b, "%s: %s", IDTokenResult, res.Token.Command)
	default:
		fmt.Fprintf(&b, "%s: %s", res.Kind, res.Status)
	}
	return strings.TrimSpace(b.String())
}
