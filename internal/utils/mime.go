package utils

import (
	"net/http"
)

// sniffLength defines the maximum number of bytes inspected when detecting content types.
const sniffLength = 512

// DetectMimeType returns the MIME type of data using http.DetectContentType.
func DetectMimeType(data []byte) string {
	if len(data) > sniffLength {
		data = data[:sniffLength]
	}
	return http.DetectContentType(data)
}
