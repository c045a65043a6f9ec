package proxy

import (
	"fmt"
	"html"
	"io"
)

const errorHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>%[1]d %[2]s</title>
    <style>
        body { font-family: Arial, sans-serif; text-align: center; padding: 50px; }
        h1 { color: #d9534f; }
    </style>
</head>
<body>
    <h1>%[1]d %[2]s</h1>
    <p>%[3]s</p>
</body>
</html>`

const authRealm = "wicket"

func statusReason(status int) string {
	switch status {
	case 400:
		return "Bad Request"
	case 407:
		return "Proxy Authentication Required"
	case 502:
		return "Bad Gateway"
	case 504:
		return "Gateway Timeout"
	default:
		return "Internal Server Error"
	}
}

// writeErrorResponse emits a terminal HTTP response with an HTML body. The
// response always carries Content-Length and Connection: close; the caller
// closes the connection afterwards. A 407 additionally carries the Basic
// challenge. The detail, which can carry request-derived text, is escaped
// into the body.
func writeErrorResponse(w io.Writer, status int, detail string) error {
	reason := statusReason(status)
	body := fmt.Sprintf(errorHTMLTemplate, status, reason, html.EscapeString(detail))

	challenge := ""
	if status == 407 {
		challenge = fmt.Sprintf("Proxy-Authenticate: Basic realm=%q\r\n", authRealm)
	}

	response := fmt.Sprintf("HTTP/1.1 %d %s\r\n"+
		"Content-Type: text/html; charset=utf-8\r\n"+
		"Content-Length: %d\r\n"+
		"%s"+
		"Connection: close\r\n"+
		"\r\n%s", status, reason, len(body), challenge, body)

	_, err := io.WriteString(w, response)
	return err
}
