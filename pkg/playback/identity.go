package playback

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/killallgit/resume-api/pkg/errors"
)

type userFile struct {
	UID string `json:"uid"`
}

// LoadUserID reads the user id from a JSON file of the form {"uid": "..."}
func LoadUserID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading user file: %w", err)
	}

	var uf userFile
	if err := json.Unmarshal(data, &uf); err != nil {
		return "", fmt.Errorf("parsing user file %s: %w", path, err)
	}

	uid := strings.TrimSpace(uf.UID)
	if uid == "" {
		return "", apperrors.MissingFieldError("uid")
	}
	return uid, nil
}
