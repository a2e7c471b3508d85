package telemetry

import (
	"context"
	"testing"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), "", "blog", 1)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
