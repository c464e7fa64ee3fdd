package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "discovery error",
			code:    "E100",
			wantMsg: "Route discovery failed",
			wantCat: CategoryDiscovery,
		},
		{
			name:    "prefetch error",
			code:    "E112",
			wantMsg: "Data hook failed",
			wantCat: CategoryPrefetch,
		},
		{
			name:    "config error",
			code:    "E121",
			wantMsg: "Configuration file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q is required", "bucket")
	if err.Message != `flag "bucket" is required` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestError_Error(t *testing.T) {
	if got, want := New("E111").Error(), "E111: Route not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err := New("E100").WithDetail("reading sites").Wrap(fs.ErrPermission)
	want := "E100: Route discovery failed (reading sites): permission denied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestError_WrapSupportsIs(t *testing.T) {
	err := New("E100").Wrap(fs.ErrNotExist)
	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should see the wrapped cause")
	}

	outer := fmt.Errorf("startup: %w", err)
	var ce *Error
	if !stderrors.As(outer, &ce) || ce.Code != "E100" {
		t.Errorf("errors.As did not find E100, got %v", ce)
	}
}

func TestHasCode(t *testing.T) {
	inner := New("E111")
	outer := New("E110").Wrap(fmt.Errorf("match: %w", inner))

	if !HasCode(outer, "E110") {
		t.Error("HasCode(E110) = false")
	}
	if !HasCode(outer, "E111") {
		t.Error("HasCode(E111) = false, want nested code found")
	}
	if HasCode(outer, "E112") {
		t.Error("HasCode(E112) = true")
	}
	if HasCode(nil, "E110") {
		t.Error("HasCode(nil) = true")
	}
	if CodeOf(outer) != "E110" {
		t.Errorf("CodeOf = %q, want E110", CodeOf(outer))
	}
	if CodeOf(stderrors.New("plain")) != "" {
		t.Error("CodeOf(plain) should be empty")
	}
}

func TestError_WithLocation(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "endpoints.json")
	content := "[\n  {\"route\": \"/about\",\n  \"file\": x\n]\n"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E130").WithLocation(tmpFile, 3, 11)
	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.Line != 3 || err.Location.Column != 11 {
		t.Errorf("Location = %v", err.Location)
	}
	if len(err.Context) == 0 {
		t.Error("Context should not be empty")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E100") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	ce := New("E112")
	if FromError(fmt.Errorf("wrapped: %w", ce), "E100") != ce {
		t.Error("FromError should return an *Error found in the chain")
	}

	std := stderrors.New("boom")
	if got := FromError(std, "E100"); got.Wrapped != std || got.Code != "E100" {
		t.Errorf("FromError(std) = %+v", got)
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		loc  *Location
		want string
	}{
		{nil, ""},
		{&Location{File: "cubic.json", Line: 4, Column: 2}, "cubic.json:4:2"},
		{&Location{File: "cubic.json", Line: 4}, "cubic.json:4"},
	}
	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E100").
		WithDetail("reading src/sites").
		Wrap(fs.ErrPermission)

	formatted := err.Format()
	for _, want := range []string{"E100", "Route discovery failed", "reading src/sites", "Cause: permission denied", "Hint:", "Learn more:"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E130").WithLocation("endpoints.json", 10, 5)
	want := "endpoints.json:10:5: E130: Endpoint manifest unreadable"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	json := New("E113").FormatJSON()
	for _, want := range []string{`"code":"E113"`, `"category":"prefetch"`, `"message":"Prefetch timed out"`, `"suggestion":`} {
		if !strings.Contains(json, want) {
			t.Errorf("FormatJSON() missing %s: %s", want, json)
		}
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, New("E121"))
	if !strings.Contains(buf.String(), "E121: Configuration file not found") {
		t.Errorf("PrintError(coded) = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("PrintError(plain) = %q", buf.String())
	}
}

func TestRegistry(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("GetAllCodes() should return codes")
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s incomplete: %+v", code, tmpl)
		}
	}

	Register("E999", ErrorTemplate{Category: CategoryCLI, Message: "Custom test error"})
	defer delete(registry, "E999")
	if New("E999").Message != "Custom test error" {
		t.Error("registered template not used")
	}
}

func TestWrapText(t *testing.T) {
	if got := wrapText("short text", 100); len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}
	if got := wrapText("this is a longer text that should be wrapped", 20); len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}
