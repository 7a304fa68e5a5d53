// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package validation

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type triggerRequest struct {
	Entity    string `json:"entity" validate:"required,entitykind"`
	Direction string `json:"direction" validate:"required,oneof=inbound outbound"`
}

type pageRef struct {
	PageID string `validate:"required,notionid"`
	Heat   int    `json:"heat" validate:"gte=0,lte=100"`
	Note   string `json:"-" validate:"max=3"`
}

func TestValidateStruct(t *testing.T) {
	const page = "1a2b3c4d1a2b1a2b1a2b1a2b3c4d5e6f"
	tests := []struct {
		name      string
		input     any
		wantField string
		wantRule  string
		wantMsg   string
	}{
		{name: "valid trigger", input: &triggerRequest{Entity: "title_reign", Direction: "inbound"}},
		{name: "unknown kind", input: &triggerRequest{Entity: "match", Direction: "inbound"},
			wantField: "entity", wantRule: "entitykind", wantMsg: "entity must be a known entity kind"},
		{name: "bad direction", input: &triggerRequest{Entity: "wrestler", Direction: "sideways"},
			wantField: "direction", wantRule: "oneof", wantMsg: "direction must be one of: inbound outbound"},
		{name: "missing direction", input: &triggerRequest{Entity: "wrestler"},
			wantField: "direction", wantRule: "required", wantMsg: "direction is required"},
		{name: "dashed page id", input: &pageRef{PageID: "1a2b3c4d-1a2b-1a2b-1a2b-1a2b3c4d5e6f"}},
		{name: "compact page id", input: &pageRef{PageID: page, Heat: 100}},
		{name: "untagged field keeps Go name", input: &pageRef{PageID: "Rob Van Dam"},
			wantField: "PageID", wantRule: "notionid", wantMsg: "PageID must be a Notion page id"},
		{name: "heat out of range", input: &pageRef{PageID: page, Heat: 101},
			wantField: "heat", wantRule: "lte", wantMsg: "heat must be at most 100"},
		{name: "string length in characters", input: &pageRef{PageID: page, Note: "long"},
			wantRule: "max", wantMsg: "Note must be at most 3 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStruct(tt.input)
			if tt.wantMsg == "" {
				if errs != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", errs)
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
			}
			if tt.wantField != "" && errs[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.wantField)
			}
			if errs[0].Rule != tt.wantRule {
				t.Errorf("Rule = %q, want %q", errs[0].Rule, tt.wantRule)
			}
			if errs[0].Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestErrors_UsableAsError(t *testing.T) {
	errs := ValidateStruct(&triggerRequest{Entity: "wrestler"})
	err := fmt.Errorf("reject trigger: %w", errs)

	var target Errors
	if !errors.As(err, &target) || len(target) != 1 {
		t.Fatalf("errors.As() did not recover Errors from %v", err)
	}
	if !strings.HasSuffix(err.Error(), "direction is required") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestErrors_APIError(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		apiErr := ValidateStruct(&triggerRequest{Entity: "wrestler"}).APIError()
		if apiErr.Code != CodeValidation {
			t.Errorf("Code = %q", apiErr.Code)
		}
		if apiErr.Details["field"] != "direction" || apiErr.Details["rule"] != "required" {
			t.Errorf("Details = %v", apiErr.Details)
		}
	})

	t.Run("multiple", func(t *testing.T) {
		apiErr := ValidateStruct(&triggerRequest{}).APIError()
		if apiErr.Message != "entity is required; direction is required" {
			t.Errorf("Message = %q", apiErr.Message)
		}
		fields, ok := apiErr.Details["fields"].([]FieldError)
		if !ok || len(fields) != 2 {
			t.Errorf("Details = %v", apiErr.Details)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if msg := Errors(nil).APIError().Message; msg != "Validation failed" {
			t.Errorf("Message = %q", msg)
		}
	})
}
