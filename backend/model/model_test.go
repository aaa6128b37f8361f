package model

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
		want    Message
	}{
		{
			name: "valid join",
			raw:  `{"type":"join","role":"monitor","room":"r1"}`,
			want: Message{Type: TypeJoin, Role: RoleMonitor, Room: "r1"},
		},
		{
			name: "valid offer with payload",
			raw:  `{"type":"offer","room":"r1","payload":{"sdp":"x"}}`,
			want: Message{Type: TypeOffer, Room: "r1", Payload: []byte(`{"sdp":"x"}`)},
		},
		{
			name: "ice candidate without room",
			raw:  `{"type":"ice-candidate","payload":{"candidate":"c"}}`,
			want: Message{Type: TypeICECandidate, Payload: []byte(`{"candidate":"c"}`)},
		},
		{
			name:    "invalid json",
			raw:     `{"type":`,
			wantErr: ErrMalformed,
		},
		{
			name:    "unknown type",
			raw:     `{"type":"hangup","room":"r1"}`,
			wantErr: ErrUnknownType,
		},
		{
			name:    "join without role",
			raw:     `{"type":"join","room":"r1"}`,
			wantErr: ErrBadRole,
		},
		{
			name:    "join with bogus role",
			raw:     `{"type":"join","role":"admin","room":"r1"}`,
			wantErr: ErrBadRole,
		},
		{
			// the fixed-room policy may still supply the room downstream
			name: "join without room",
			raw:  `{"type":"join","role":"viewer"}`,
			want: Message{Type: TypeJoin, Role: RoleViewer},
		},
		{
			name:    "empty type",
			raw:     `{"room":"r1"}`,
			wantErr: ErrUnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.raw))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if got.Type != tt.want.Type || got.Room != tt.want.Room || got.Role != tt.want.Role {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
			if string(got.Payload) != string(tt.want.Payload) {
				t.Errorf("Parse() payload = %s, want %s", got.Payload, tt.want.Payload)
			}
		})
	}
}

func TestRoleCounterpart(t *testing.T) {
	if RoleMonitor.Counterpart() != RoleViewer {
		t.Error("monitor counterpart should be viewer")
	}
	if RoleViewer.Counterpart() != RoleMonitor {
		t.Error("viewer counterpart should be monitor")
	}
}

func TestNotifications(t *testing.T) {
	if got := ReadyFor(RoleMonitor).Type; got != TypeViewerReady {
		t.Errorf("ReadyFor(monitor) = %s, want %s", got, TypeViewerReady)
	}
	if got := ReadyFor(RoleViewer).Type; got != TypeMonitorReady {
		t.Errorf("ReadyFor(viewer) = %s, want %s", got, TypeMonitorReady)
	}
	if got := LeftFor(RoleMonitor).Type; got != TypeViewerLeft {
		t.Errorf("LeftFor(monitor) = %s, want %s", got, TypeViewerLeft)
	}
	if got := LeftFor(RoleViewer).Type; got != TypeMonitorLeft {
		t.Errorf("LeftFor(viewer) = %s, want %s", got, TypeMonitorLeft)
	}

	ov := Overridden("kitchen")
	if ov.Type != TypeRoomOverridden {
		t.Errorf("Overridden type = %s, want %s", ov.Type, TypeRoomOverridden)
	}
	if string(ov.Payload) != `{"room":"kitchen"}` {
		t.Errorf("Overridden payload = %s", ov.Payload)
	}
}

func TestWireTrySend(t *testing.T) {
	w := NewWire()
	for i := 0; i < defaultWireBuffer; i++ {
		if !w.TrySend(Message{Type: TypeOffer}) {
			t.Fatalf("send %d should have been buffered", i)
		}
	}
	if w.TrySend(Message{Type: TypeOffer}) {
		t.Error("send into a full wire should drop, not block")
	}
}
