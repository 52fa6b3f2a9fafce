package entity

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr error
	}{
		{in: "pending", want: StatusPending},
		{in: "in delivery", want: StatusInDelivery},
		{in: "completed", want: StatusCompleted},
		{in: "cancelled", want: StatusCancelled},
		{in: "shipped", wantErr: ErrInvalidStatus},
		{in: "", wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if err != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected status '%s', got '%s'", tt.want, got)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusInDelivery, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, false},
		{StatusInDelivery, StatusCompleted, true},
		{StatusInDelivery, StatusCancelled, true},
		{StatusInDelivery, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if StatusPending.IsTerminal() || StatusInDelivery.IsTerminal() {
		t.Error("Expected pending and in delivery to be non-terminal")
	}
	if !StatusCompleted.IsTerminal() || !StatusCancelled.IsTerminal() {
		t.Error("Expected completed and cancelled to be terminal")
	}
}
