package proxy

import (
	"bytes"
	"errors"
	"io"
)

const (
	// readChunkSize is how much is pulled off the socket per read while
	// looking for the end of the head.
	readChunkSize = 8 * 1024

	// maxHeadBytes caps how many unterminated head bytes a client may
	// send before the connection is rejected.
	maxHeadBytes = 16 * 1024
)

var (
	errHeadTooLarge  = errors.New("request head exceeds size limit")
	errHeadTruncated = errors.New("connection closed mid request head")
)

var headTerminator = []byte("\r\n\r\n")

// readHead accumulates bytes from r until the blank line that ends an HTTP
// head. It returns the head including the terminator, plus any bytes read
// past it (the start of a request body). A connection that closes before
// sending anything yields ("", nil, nil).
func readHead(r io.Reader) (string, []byte, error) {
	var buf []byte
	chunk := make([]byte, readChunkSize)
	scanned := 0
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			// Rescan a few bytes back so a terminator split across
			// two reads is still found.
			from := scanned - (len(headTerminator) - 1)
			if from < 0 {
				from = 0
			}
			if i := bytes.Index(buf[from:], headTerminator); i >= 0 {
				end := from + i + len(headTerminator)
				return string(buf[:end]), buf[end:], nil
			}
			scanned = len(buf)
			if len(buf) > maxHeadBytes {
				return "", nil, errHeadTooLarge
			}
		}
		if err != nil {
			if err == io.EOF {
				if len(buf) == 0 {
					return "", nil, nil
				}
				return "", nil, errHeadTruncated
			}
			return "", nil, err
		}
	}
}
