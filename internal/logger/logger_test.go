package logger

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "production info", cfg: Config{Level: "info"}},
		{name: "development debug", cfg: Config{Level: "debug", Development: true}},
		{name: "unknown level", cfg: Config{Level: "chatty"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if l == nil {
				t.Fatal("Expected logger, got nil")
			}
		})
	}
}
