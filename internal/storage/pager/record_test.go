package pager

import "testing"

func TestRecordSerializeRoundTrip(t *testing.T) {
	rec := Record{ID: 42, Username: "alice", Email: "alice@example.com"}
	buf := make([]byte, RecordSize)
	serializeRecord(rec, buf)

	got := deserializeRecord(buf)
	if got != rec {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, rec)
	}
}

func TestRecordSerializeTruncatesAtNUL(t *testing.T) {
	rec := Record{ID: 1, Username: "bob", Email: "bob@x.com"}
	buf := make([]byte, RecordSize)
	// Pre-fill with garbage past the string content to confirm the NUL
	// terminator, not buffer length, determines the read-back string.
	for i := range buf {
		buf[i] = 0xAA
	}
	serializeRecord(rec, buf)

	got := deserializeRecord(buf)
	if got.Username != "bob" || got.Email != "bob@x.com" {
		t.Fatalf("got %+v, want username=bob email=bob@x.com", got)
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"ok", Record{Username: "a", Email: "b"}, false},
		{"username too long", Record{Username: string(make([]byte, UsernameMaxLen+1))}, true},
		{"email too long", Record{Email: string(make([]byte, EmailMaxLen+1))}, true},
		{"username at limit", Record{Username: string(make([]byte, UsernameMaxLen))}, false},
		{"email at limit", Record{Email: string(make([]byte, EmailMaxLen))}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
