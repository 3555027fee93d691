package api

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/NasaVasa/eventdash/internal/domain"
)

type rowsResponse struct {
	Data []domain.Row `json:"data"`
}

type userIDsResponse struct {
	UserIDs []string `json:"user_ids"`
}

type transactionResponse struct {
	Transaction *domain.Row `json:"transaction"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type statusRequest struct {
	Status domain.AlertStatus `json:"status"`
}

type errorResponse struct {
	Detail detailText `json:"detail"`
	Error  string     `json:"error"`
}

// detailText accepts the plain-string detail of handled errors as well as
// the list form used for request validation failures.
type detailText string

func (d *detailText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = ""
		return nil
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*d = detailText(text)
		return nil
	}

	if trimmed[0] == '[' {
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(trimmed, &items); err == nil {
			messages := make([]string, 0, len(items))
			for _, item := range items {
				if item.Msg != "" {
					messages = append(messages, item.Msg)
				}
			}
			if len(messages) > 0 {
				*d = detailText(strings.Join(messages, "; "))
				return nil
			}
		}
	}

	*d = detailText(trimmed)
	return nil
}
