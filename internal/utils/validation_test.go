package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
		errMsg  string
	}{
		{name: "feature name", id: "digitalTwin"},
		{name: "numeric id", id: "12"},
		{name: "empty", id: "", wantErr: true, errMsg: "id cannot be empty"},
		{name: "too long", id: strings.Repeat("a", 101), wantErr: true, errMsg: "id too long (max 100 characters)"},
		{name: "script tag", id: "voice<script>", wantErr: true, errMsg: "id contains invalid characters"},
		{name: "spaces", id: "digital twin", wantErr: true, errMsg: "id contains invalid characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr {
				assert.EqualError(t, err, tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}
