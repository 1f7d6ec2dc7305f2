package actionimpl

import "testing"

func TestSerialCommandActionRejectsMissingParams(t *testing.T) {
	if _, err := newSerialCommandAction(map[string]interface{}{}); err == nil {
		t.Fatal("expected an error when required params are missing")
	}
}

func TestSerialCommandActionRejectsInvalidResponsePattern(t *testing.T) {
	_, err := newSerialCommandAction(map[string]interface{}{
		"port":             "/dev/ttyUSB0",
		"baud_rate":        float64(115200),
		"command":          "G28",
		"response_pattern": "(unterminated",
	})
	if err == nil {
		t.Fatal("expected an error for an invalid response_pattern regex")
	}
}

func TestSerialCommandActionDefaultsReadTimeout(t *testing.T) {
	impl, err := newSerialCommandAction(map[string]interface{}{
		"port":             "/dev/ttyUSB0",
		"baud_rate":        float64(115200),
		"command":          "G28",
		"response_pattern": "^ok$",
	})
	if err != nil {
		t.Fatalf("newSerialCommandAction: %v", err)
	}
	sc := impl.(*SerialCommandAction)
	if sc.readTimeout.Milliseconds() != 2000 {
		t.Fatalf("default readTimeout = %v, want 2000ms", sc.readTimeout)
	}
}
