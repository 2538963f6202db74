package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEncodeFrameRoundUpdateIsBinary(t *testing.T) {
	st := RoundState{
		GameCode:    "ABCDEF",
		RoundNumber: 2,
		Tick:        7,
		Phase:       "active",
		Players:     []PlayerState{{ID: "p1", Alive: true, Weapon: "B"}},
	}
	f, err := EncodeFrame(MsgRoundUpdate, st)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Binary {
		t.Fatal("round updates should be binary")
	}

	var got struct {
		T string     `json:"t"`
		D RoundState `json:"d"`
	}
	if err := DecodeBinary(f.Data, &got); err != nil {
		t.Fatalf("DecodeBinary: %v", err)
	}
	if got.T != MsgRoundUpdate || got.D.Tick != 7 || got.D.GameCode != "ABCDEF" {
		t.Errorf("unexpected decoded frame %+v", got)
	}
	if len(got.D.Players) != 1 || got.D.Players[0].ID != "p1" || !got.D.Players[0].Alive {
		t.Errorf("unexpected players %+v", got.D.Players)
	}
	if got.D.Map != nil {
		t.Error("map should stay nil")
	}
}

func TestEncodeFrameDefaultsToJSON(t *testing.T) {
	f, err := EncodeFrame(MsgError, ErrorMsg{Msg: "nope"})
	if err != nil {
		t.Fatal(err)
	}
	if f.Binary {
		t.Fatal("errors should be text frames")
	}
	var env InEnvelope
	if err := json.Unmarshal(f.Data, &env); err != nil {
		t.Fatal(err)
	}
	if env.T != MsgError || string(env.D) != `{"msg":"nope"}` {
		t.Errorf("unexpected frame %s", f.Data)
	}
}

func TestEncodeJSONOmitsEmptyData(t *testing.T) {
	data, err := EncodeJSON(MsgPong, nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"t":"pong"}` {
		t.Errorf("unexpected pong %s", data)
	}
}

func TestRoundStartCarriesPowerUps(t *testing.T) {
	st := RoundState{PowerUps: []PowerUpState{{ID: "x", Letter: "R"}}}
	data, err := EncodeJSON(MsgRoundStart, st)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"powerups":[{"id":"x",`) || !strings.Contains(string(data), `"letter":"R"`) {
		t.Errorf("unexpected round-start %s", data)
	}
}

func TestIntentDecodeKeepsMissingAngles(t *testing.T) {
	var in Intent
	if err := json.Unmarshal([]byte(`{"type":"move","turretAngle":30}`), &in); err != nil {
		t.Fatal(err)
	}
	if in.BodyAngle != nil {
		t.Errorf("expected no body angle, got %v", *in.BodyAngle)
	}
	if in.TurretAngle == nil || *in.TurretAngle != 30 {
		t.Errorf("expected turret angle 30, got %v", in.TurretAngle)
	}
}
