package llm

import (
	"errors"
	"strings"
	"testing"

	"landlord/internal/domain"
)

func testHand(t *testing.T) domain.Hand {
	t.Helper()
	var cards []domain.Card
	for _, label := range strings.Fields("3 4 5 6 7 9 9 10 J Q K A 2 w W") {
		r, ok := domain.ParseFace(label)
		if !ok {
			t.Fatalf("bad label %q", label)
		}
		for _, c := range r.Cards() {
			if !containsCard(cards, c) {
				cards = append(cards, c)
				break
			}
		}
	}
	return domain.NewHand(cards)
}

func containsCard(cards []domain.Card, c domain.Card) bool {
	for _, x := range cards {
		if x == c {
			return true
		}
	}
	return false
}

func TestParsePlay(t *testing.T) {
	hand := testHand(t)
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr bool
	}{
		{name: "tagged straight", reply: "<answer>3 4 5 6 7</answer>", want: "3 4 5 6 7"},
		{name: "misspelled tag", reply: "thinking... <anser>K</anser>", want: "K"},
		{name: "pass", reply: "<answer>PASS</answer>", want: ""},
		{name: "chinese pass", reply: "<answer>要不起</answer>", want: ""},
		{name: "untagged prose", reply: "I play the pair 9 9", want: "9 9"},
		{name: "chinese pair prefix", reply: "<answer>对9</answer>", want: "9 9"},
		{name: "ten spellings", reply: "<answer>10 J Q K A</answer>", want: "10 J Q K A"},
		{name: "T for ten", reply: "<answer>T</answer>", want: "10"},
		{name: "rocket", reply: "<answer>王炸</answer>", want: "w W"},
		{name: "jokers by letter", reply: "<answer>w W</answer>", want: "w W"},
		{name: "red joker alone", reply: "<answer>大王</answer>", want: "W"},
		{name: "more than held", reply: "<answer>2 2</answer>", wantErr: true},
		{name: "no cards", reply: "<answer>hello there</answer>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlay(tt.reply, hand)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrProviderError) {
					t.Fatalf("ParsePlay(%q) error = %v, want ErrProviderError", tt.reply, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePlay(%q): %v", tt.reply, err)
			}
			if faces := facesOrEmpty(got); faces != tt.want {
				t.Fatalf("ParsePlay(%q) = %q, want %q", tt.reply, faces, tt.want)
			}
			if !hand.Contains(got) {
				t.Fatalf("ParsePlay(%q) returned cards outside the hand", tt.reply)
			}
		})
	}
}

func facesOrEmpty(cards []domain.Card) string {
	if len(cards) == 0 {
		return ""
	}
	return faces(cards)
}

func TestParseBid(t *testing.T) {
	tests := []struct {
		reply   string
		want    int
		wantErr bool
	}{
		{reply: "<answer>2</answer>", want: 2},
		{reply: "I bid 3", want: 3},
		{reply: "<answer>0</answer>", want: 0},
		{reply: "<answer>pass</answer>", want: 0},
		{reply: "no idea", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got, err := ParseBid(tt.reply)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrProviderError) {
					t.Fatalf("ParseBid(%q) error = %v", tt.reply, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseBid(%q) = %d, %v; want %d", tt.reply, got, err, tt.want)
			}
		})
	}
}
