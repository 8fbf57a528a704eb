package services

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/Lllllllleong/resumeflow/internal/models"
)

// DecodeEvent extracts the first object reference from an S3-shaped event.
// The object key arrives form-encoded ("+" for spaces) and is decoded here.
func DecodeEvent(data []byte) (models.ObjectReference, error) {
	var event models.S3Event
	if err := json.Unmarshal(data, &event); err != nil {
		return models.ObjectReference{}, MalformedEventError("event is not valid JSON", err)
	}
	return ReferenceFromEvent(&event)
}

// ReferenceFromEvent validates an already decoded event.
func ReferenceFromEvent(event *models.S3Event) (models.ObjectReference, error) {
	if event == nil || len(event.Records) == 0 {
		return models.ObjectReference{}, MalformedEventError("event has no records", nil)
	}
	record := event.Records[0].S3
	if record.Bucket.Name == "" {
		return models.ObjectReference{}, MalformedEventError("record is missing s3.bucket.name", nil)
	}
	if record.Object.Key == "" {
		return models.ObjectReference{}, MalformedEventError("record is missing s3.object.key", nil)
	}
	return models.ObjectReference{Bucket: record.Bucket.Name, Key: decodeKey(record.Object.Key)}, nil
}

// decodeKey form-decodes an object key. A "%" that does not start a valid
// escape is kept as a literal character.
func decodeKey(raw string) string {
	if key, err := url.QueryUnescape(raw); err == nil {
		return key
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(raw) && isHexDigit(raw[i+1]) && isHexDigit(raw[i+2]):
			v, _ := strconv.ParseUint(raw[i+1:i+3], 16, 8)
			b.WriteByte(byte(v))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
