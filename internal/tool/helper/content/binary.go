package content

// BinarySampleSize is the number of leading bytes inspected for NUL bytes.
// Git uses the same window.
const BinarySampleSize = 8000

// IsBinaryContent reports whether content looks binary: a NUL byte within the
// first BinarySampleSize bytes. UTF-16 and UTF-32 byte order marks are treated
// as text because their encodings legitimately contain NULs.
func IsBinaryContent(content []byte) bool {
	if hasWideBOM(content) {
		return false
	}
	sample := content
	if len(sample) > BinarySampleSize {
		sample = sample[:BinarySampleSize]
	}
	for _, b := range sample {
		if b == 0 {
			return true
		}
	}
	return false
}

func hasWideBOM(content []byte) bool {
	if len(content) >= 4 {
		if (content[0] == 0xFF && content[1] == 0xFE && content[2] == 0x00 && content[3] == 0x00) ||
			(content[0] == 0x00 && content[1] == 0x00 && content[2] == 0xFE && content[3] == 0xFF) {
			return true
		}
	}
	if len(content) >= 2 {
		return (content[0] == 0xFF && content[1] == 0xFE) || (content[0] == 0xFE && content[1] == 0xFF)
	}
	return false
}
