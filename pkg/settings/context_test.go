package settings

import (
	"context"
	"testing"
	"time"
)

func TestFromContextOrDefault(t *testing.T) {
	stored := &Run{NoColor: true}
	tests := []struct {
		name       string
		ctx        context.Context
		wantStored bool
	}{
		{"stored settings", IntoContext(context.Background(), stored), true},
		{"no settings", context.Background(), false},
		{"nil settings", IntoContext(context.Background(), nil), false},
		{"value of another type", context.WithValue(context.Background(), settingsContextKey, "debug"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromContextOrDefault(tt.ctx)
			if got == nil {
				t.Fatal("FromContextOrDefault() returned nil")
			}
			if tt.wantStored {
				if got != stored {
					t.Errorf("FromContextOrDefault() = %p; want stored pointer %p", got, stored)
				}
				return
			}
			if got.Source.Kind != SourceFile || got.Source.Timeout != 10*time.Second {
				t.Errorf("FromContextOrDefault() Source = %+v; want CLI defaults", got.Source)
			}
		})
	}
}

func TestRunSourceRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		source SourceSettings
	}{
		{"file", SourceSettings{Kind: SourceFile, Path: "contacts.json", Timeout: time.Second}},
		{"http", SourceSettings{Kind: SourceHTTP, URL: "http://localhost/api", Timeout: 3 * time.Second}},
		{"sqlite", SourceSettings{Kind: SourceSQLite, Path: "crm.db", Table: "contacts"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := NewCliParams()
			run.Source = tt.source
			got := FromContextOrDefault(IntoContext(context.Background(), run))
			if got.Source != tt.source {
				t.Errorf("Source = %+v; want %+v", got.Source, tt.source)
			}
		})
	}
}
