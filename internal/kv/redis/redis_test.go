package redis

import (
	"context"
	"os"
	"testing"

	"relkv/internal/kv"
	"relkv/internal/kv/kvtest"
)

// The suite needs a live server: RELKV_TEST_REDIS_ADDR=localhost:6379
func TestBackendContract(t *testing.T) {
	addr := os.Getenv("RELKV_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RELKV_TEST_REDIS_ADDR not set")
	}

	kvtest.Run(t, func(t *testing.T, prefix string) kv.Backend {
		ctx := context.Background()
		b, err := Dial(ctx, addr, "", 0, WithPrefix("relkv-test::"+t.Name()+"::"+prefix))
		if err != nil {
			t.Fatalf("failed to connect: %v", err)
		}
		t.Cleanup(func() {
			dump, _ := b.Dump(ctx)
			for k := range dump {
				_ = b.Remove(ctx, k)
			}
			b.Close()
		})
		return b
	})
}

func TestGlobEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"relkv::", "relkv::"},
		{"a*b", `a\*b`},
		{"[x]?", `\[x\]\?`},
	}

	for _, tt := range tests {
		if got := globEscape(tt.input); got != tt.want {
			t.Errorf("globEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
