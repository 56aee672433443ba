package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"securehire/pkg/errors"
)

const checkInPrefix = "securehire:checkin:"

// CheckInPayload is the text a job's QR poster encodes.
func CheckInPayload(jobID, nonce string) string {
	return checkInPrefix + jobID + ":" + nonce
}

// NewCheckInPayload generates a fresh nonce for jobID.
func NewCheckInPayload(jobID string) (payload, nonce string) {
	nonce = strings.ReplaceAll(uuid.New().String(), "-", "")
	return CheckInPayload(jobID, nonce), nonce
}

// ParseCheckInPayload extracts the job id and nonce from a scanned code.
func ParseCheckInPayload(payload string) (jobID, nonce string, err error) {
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, checkInPrefix) {
		return "", "", errors.BadRequest("This QR code is not a check-in code", nil)
	}

	rest := strings.TrimPrefix(payload, checkInPrefix)
	idx := strings.LastIndex(rest, ":")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", errors.BadRequest("Malformed check-in code", nil)
	}
	return rest[:idx], rest[idx+1:], nil
}

// RenderQRCode encodes payload as a PNG of size x size pixels.
func RenderQRCode(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
