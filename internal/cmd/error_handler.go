package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bullion/bullion-cli/internal/api"
	"github.com/bullion/bullion-cli/internal/resolve"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var serverErr *api.ServerError
	var envelopeErr *api.EnvelopeError
	var transportErr *api.TransportError
	var ambiguousErr *resolve.AmbiguousError

	switch {
	case errors.Is(err, api.ErrNotLoggedIn):
		msg.WriteString("Not logged in.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: bullion auth login --email you@example.com\n")

	case api.IsUnauthorized(err):
		fmt.Fprintf(&msg, "Request failed: %s\n\n", requestFailure(err))
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Your session may have expired\n")
		msg.WriteString("  - Run: bullion auth login\n")

	case api.IsNotFoundError(err):
		fmt.Fprintf(&msg, "Request failed: %s\n\n", requestFailure(err))
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - The user doesn't exist\n")
		msg.WriteString("  - Check the ID with: bullion users list\n")

	case errors.As(err, &serverErr):
		fmt.Fprintf(&msg, "Request failed: %s\n\n", serverErr.Message)
		msg.WriteString(suggestionsForStatusCode(serverErr.StatusCode))

	case errors.As(err, &envelopeErr):
		fmt.Fprintf(&msg, "Request failed: %s\n\n", envelopeErr.Error())
		msg.WriteString(suggestionsForStatusCode(envelopeErr.Status))

	case errors.Is(err, api.ErrDecodeFailed), errors.Is(err, api.ErrNoResponseBody):
		// Schema details stay in --debug output.
		fmt.Fprintf(&msg, "Request failed: %s\n\n", api.StructuredErrorFromError(err).Message)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Use --debug to see the raw response\n")
		msg.WriteString("  - Check that --base-url points at the Bullion API\n")

	case errors.Is(err, api.ErrInvalidURL):
		fmt.Fprintf(&msg, "Invalid URL: %s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check BULLION_BASE_URL, BASE_URL in .env, or --base-url\n")

	case errors.As(err, &ambiguousErr):
		fmt.Fprintf(&msg, "Error: %s\n\n", ambiguousErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Pass the user ID instead of a name\n")

	case errors.As(err, &transportErr):
		writeTransportHelp(&msg, transportErr)

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

// requestFailure returns the server's message for a rejected request.
func requestFailure(err error) string {
	var serverErr *api.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	var envelopeErr *api.EnvelopeError
	if errors.As(err, &envelopeErr) {
		return envelopeErr.Error()
	}
	return err.Error()
}

func writeTransportHelp(msg *strings.Builder, err *api.TransportError) {
	text := err.Error()
	switch {
	case strings.Contains(text, "connection refused"):
		msg.WriteString("Connection refused.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check if the Bullion API is reachable\n")
		msg.WriteString("  - Verify the URL: bullion auth status\n")
	case strings.Contains(text, "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the base URL spelling\n")
		msg.WriteString("  - Verify your DNS settings\n")
	case strings.Contains(text, "certificate"):
		msg.WriteString("TLS certificate error.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Verify the server's TLS certificate\n")
		msg.WriteString("  - Ensure you're using https:// correctly\n")
	default:
		fmt.Fprintf(msg, "Error: %s\n\n", text)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check your network connection\n")
		msg.WriteString("  - Increase --timeout for slow connections\n")
	}
}

func suggestionsForStatusCode(code int) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch {
	case code == 400:
		suggestions.WriteString("  - Check your request parameters\n")
		suggestions.WriteString("  - Use --debug to see the full request\n")

	case code == 403:
		suggestions.WriteString("  - You don't have permission for this action\n")

	case code == 422:
		suggestions.WriteString("  - Validation failed\n")
		suggestions.WriteString("  - Check your input values\n")

	case code >= 500:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}
