package stacktrace

import "testing"

func TestInternalPaths(t *testing.T) {
	// Arrange
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/hrnotify/internal/notification/usecase.(*Usecase).DispatchRecord(...)
	/src/hrnotify/internal/notification/usecase/dispatch.go:88 +0x1a5
net/http.HandlerFunc.ServeHTTP(...)
	/usr/local/go/src/net/http/server.go:2220 +0x29
`)

	// Act
	paths := InternalPaths(stack)

	// Assert
	if len(paths) != 1 {
		t.Fatalf("expected 1 internal frame, got %v", paths)
	}
	if paths[0] != "internal/notification/usecase/dispatch.go:88" {
		t.Fatalf("unexpected frame %q", paths[0])
	}
}
