package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"landlord/internal/domain"
)

var (
	answerTag = regexp.MustCompile(`(?is)<(?:answer|anser)>(.*?)</(?:answer|anser)>`)
	passWords = regexp.MustCompile(`(?i)(PASS|不出|过|不要|要不起)`)
	bidDigit  = regexp.MustCompile(`[0-3]`)
	rocketTok = regexp.MustCompile(`王炸|火箭|大小王|[wW]\s*[wW]`)
	// Words holding letters that are not card faces are prose, not cards.
	proseWord = regexp.MustCompile(`(?i)\b[a-z]*[bcdefghilmnoprsuvxyz][a-z]*\b`)
	cardTok   = regexp.MustCompile(`(一对|对|三个|三张|四个|四张|炸弹|炸)?\s*(10|大王|小王|[3-9TtJjQqKkAa2wW0])`)
)

var prefixCount = map[string]int{
	"":   1,
	"对":  2,
	"一对": 2,
	"三个": 3,
	"三张": 3,
	"四个": 4,
	"四张": 4,
	"炸弹": 4,
	"炸":  4,
}

// Answer returns the text inside the answer tag, or the whole reply when absent.
func Answer(reply string) string {
	if m := answerTag.FindStringSubmatch(reply); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(reply)
}

// ParseBid extracts a bid in 0..3. A pass phrase bids 0.
func ParseBid(reply string) (int, error) {
	if passWords.MatchString(Answer(reply)) && !bidDigit.MatchString(Answer(reply)) {
		return 0, nil
	}
	for _, text := range []string{Answer(reply), reply} {
		if d := bidDigit.FindString(text); d != "" {
			bid, _ := strconv.Atoi(d)
			return bid, nil
		}
	}
	return 0, fmt.Errorf("no bid in reply %q: %w", reply, domain.ErrProviderError)
}

// ParsePlay maps a reply onto concrete cards from hand. A pass phrase
// yields nil; faces the hand cannot cover are an error.
func ParsePlay(reply string, hand domain.Hand) ([]domain.Card, error) {
	text := Answer(reply)
	if passWords.MatchString(text) {
		return nil, nil
	}

	want := map[domain.Rank]int{}
	var order []domain.Rank
	need := func(r domain.Rank, n int) {
		if want[r] == 0 {
			order = append(order, r)
		}
		want[r] += n
	}

	text = proseWord.ReplaceAllString(text, " ")
	if rocketTok.MatchString(text) {
		need(domain.RankBlackJoker, 1)
		need(domain.RankRedJoker, 1)
		text = rocketTok.ReplaceAllString(text, " ")
	}
	for _, m := range cardTok.FindAllStringSubmatch(text, -1) {
		r, ok := parseToken(m[2])
		if !ok {
			continue
		}
		need(r, prefixCount[m[1]])
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("no cards in reply %q: %w", reply, domain.ErrProviderError)
	}

	var out []domain.Card
	for _, r := range order {
		cards := hand.Take(r, want[r])
		if cards == nil {
			return nil, fmt.Errorf("hand lacks %d x %s: %w", want[r], r, domain.ErrProviderError)
		}
		out = append(out, cards...)
	}
	return out, nil
}

func parseToken(tok string) (domain.Rank, bool) {
	switch tok {
	case "大王":
		return domain.RankRedJoker, true
	case "小王":
		return domain.RankBlackJoker, true
	case "T", "t":
		return 10, true
	}
	return domain.ParseFace(tok)
}
