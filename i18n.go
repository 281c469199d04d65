/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Lang is a UI language the game ships strings for.
type Lang string

const (
	LangKorean  Lang = "ko"
	LangEnglish Lang = "en"

	defaultLang = LangKorean
)

// Message is a key into the per-locale string tables. Keys missing from a
// table render as the key itself.
type Message string

const (
	MsgTitle              Message = "title"
	MsgSubtitle           Message = "subtitle"
	MsgModeSurvival       Message = "mode_survival"
	MsgModeSurvivalHint   Message = "mode_survival_hint"
	MsgModeTimeAttack     Message = "mode_time_attack"
	MsgModeTimeAttackHint Message = "mode_time_attack_hint"
	MsgLeaderboard        Message = "leaderboard"
	MsgScore              Message = "score"
	MsgTimeLeft           Message = "time_left"
	MsgPrompt             Message = "prompt"
	MsgAnswerKimchi       Message = "answer_kimchi"
	MsgAnswerNotKimchi    Message = "answer_not_kimchi"
	MsgGameOver           Message = "game_over"
	MsgTimeUp             Message = "time_up"
	MsgFinalScore         Message = "final_score"
	MsgReveal             Message = "reveal"
	MsgNicknamePrompt     Message = "nickname_placeholder"
	MsgSubmit             Message = "submit"
	MsgRetry              Message = "retry"
	MsgMenu               Message = "menu"
	MsgBackToMenu         Message = "back_to_menu"
	MsgNoScores           Message = "no_scores"
	MsgRank               Message = "rank"
	MsgNickname           Message = "nickname"
	MsgScoreHeader        Message = "score_header"
	MsgNoContent          Message = "no_content"
	MsgNoContentHint      Message = "no_content_hint"
	MsgNicknameRequired   Message = "nickname_required"
	MsgPenalty            Message = "penalty"
	MsgSaveFailed         Message = "save_failed"
	MsgLoadFailed         Message = "load_failed"
	MsgShuffling          Message = "shuffling"
	MsgShare              Message = "share"
	MsgOtherLanguage      Message = "other_language"
	MsgKimchiDescription  Message = "kimchi_description"
	MsgNotKimchiDesc      Message = "not_kimchi_description"
)

// uiLabels are the static strings every state message carries.
var uiLabels = []Message{
	MsgTitle, MsgSubtitle,
	MsgModeSurvival, MsgModeSurvivalHint, MsgModeTimeAttack, MsgModeTimeAttackHint,
	MsgLeaderboard, MsgPrompt, MsgAnswerKimchi, MsgAnswerNotKimchi,
	MsgGameOver, MsgNicknamePrompt, MsgSubmit, MsgRetry, MsgMenu, MsgBackToMenu,
	MsgNoScores, MsgRank, MsgNickname, MsgScoreHeader,
	MsgNoContent, MsgNoContentHint, MsgShuffling, MsgShare, MsgOtherLanguage,
}

var messageTables = map[Lang]map[Message]string{
	LangKorean: {
		MsgTitle:              "이게 김치일까?",
		MsgSubtitle:           "K-푸드의 대표주자, 김치를 맞혀보세요!",
		MsgModeSurvival:       "서바이벌",
		MsgModeSurvivalHint:   "카드마다 5초! 한 번 틀리면 끝나요.",
		MsgModeTimeAttack:     "타임어택",
		MsgModeTimeAttackHint: "30초 동안 최대한 많이! 틀리면 2점 감점.",
		MsgLeaderboard:        "명예의 전당",
		MsgScore:              "점수: %d",
		MsgTimeLeft:           "남은 시간: %d초",
		MsgPrompt:             "카드를 보고 아래 버튼을 눌러주세요!",
		MsgAnswerKimchi:       "김치! 😋",
		MsgAnswerNotKimchi:    "김치 아님! 🤔",
		MsgGameOver:           "게임 오버!",
		MsgTimeUp:             "시간 초과!",
		MsgFinalScore:         "최종 점수: %d",
		MsgReveal:             "이건 \"%s\" 이었어요!",
		MsgNicknamePrompt:     "닉네임을 입력하세요",
		MsgSubmit:             "점수 등록",
		MsgRetry:              "다시 하기",
		MsgMenu:               "메뉴로",
		MsgBackToMenu:         "메뉴로 돌아가기",
		MsgNoScores:           "아직 등록된 점수가 없어요!",
		MsgRank:               "순위",
		MsgNickname:           "닉네임",
		MsgScoreHeader:        "점수",
		MsgNoContent:          "앗! 이미지 카드를 찾을 수 없어요!",
		MsgNoContentHint:      "이미지 폴더가 있는지 확인해주세요.",
		MsgNicknameRequired:   "닉네임을 입력해주세요!",
		MsgPenalty:            "땡! \"%s\"였어요. 2점 감점!",
		MsgSaveFailed:         "점수를 저장하지 못했어요. 다시 시도해주세요.",
		MsgLoadFailed:         "명예의 전당을 불러오지 못했어요.",
		MsgShuffling:          "카드를 섞는 중...",
		MsgShare:              "QR로 공유하기",
		MsgOtherLanguage:      "English",
		MsgKimchiDescription:  "맛있는 김치입니다!",
		MsgNotKimchiDesc:      "이것은 김치가 아닌 \"%s\"입니다.",
	},
	LangEnglish: {
		MsgTitle:              "Is This Kimchi?",
		MsgSubtitle:           "Spot the kimchi, the star of K-food!",
		MsgModeSurvival:       "Survival",
		MsgModeSurvivalHint:   "5 seconds per card. One mistake and it's over.",
		MsgModeTimeAttack:     "Time Attack",
		MsgModeTimeAttackHint: "As many as you can in 30 seconds. Mistakes cost 2 points.",
		MsgLeaderboard:        "Hall of Fame",
		MsgScore:              "Score: %d",
		MsgTimeLeft:           "Time left: %ds",
		MsgPrompt:             "Look at the card and pick an answer below!",
		MsgAnswerKimchi:       "Kimchi! 😋",
		MsgAnswerNotKimchi:    "Not kimchi! 🤔",
		MsgGameOver:           "Game over!",
		MsgTimeUp:             "Time's up!",
		MsgFinalScore:         "Final score: %d",
		MsgReveal:             "That was \"%s\"!",
		MsgNicknamePrompt:     "Enter a nickname",
		MsgSubmit:             "Submit score",
		MsgRetry:              "Play again",
		MsgMenu:               "Menu",
		MsgBackToMenu:         "Back to menu",
		MsgNoScores:           "No scores yet!",
		MsgRank:               "Rank",
		MsgNickname:           "Nickname",
		MsgScoreHeader:        "Score",
		MsgNoContent:          "Oops! No image cards were found!",
		MsgNoContentHint:      "Check that the image folders exist.",
		MsgNicknameRequired:   "Please enter a nickname!",
		MsgPenalty:            "Wrong! That was \"%s\". Minus 2 points!",
		MsgSaveFailed:         "Could not save your score. Please try again.",
		MsgLoadFailed:         "Could not load the hall of fame.",
		MsgShuffling:          "Shuffling cards...",
		MsgShare:              "Share via QR",
		MsgOtherLanguage:      "한국어",
		MsgKimchiDescription:  "A delicious kimchi!",
		MsgNotKimchiDesc:      "This is \"%s\", not kimchi.",
	},
}

var langTags = map[Lang]language.Tag{
	LangKorean:  language.Korean,
	LangEnglish: language.English,
}

var langMatcher = language.NewMatcher([]language.Tag{language.Korean, language.English})

var messageCatalog = mustBuildCatalog()

func mustBuildCatalog() catalog.Catalog {
	b := catalog.NewBuilder()

	for lang, table := range messageTables {
		for key, text := range table {
			if err := b.SetString(langTags[lang], string(key), text); err != nil {
				panic("i18n: " + err.Error())
			}
		}
	}

	return b
}

// ParseLang accepts the two supported language codes.
func ParseLang(s string) (Lang, bool) {
	switch Lang(s) {
	case LangKorean, LangEnglish:
		return Lang(s), true
	}
	return "", false
}

// Other returns the language the toggle switches to.
func (l Lang) Other() Lang {
	if l == LangEnglish {
		return LangKorean
	}
	return LangEnglish
}

// MatchLang picks the best supported language for an Accept-Language header.
func MatchLang(accept string) Lang {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return defaultLang
	}

	tag, _, _ := langMatcher.Match(tags...)
	base, _ := tag.Base()

	if lang, ok := ParseLang(base.String()); ok {
		return lang
	}
	return defaultLang
}

// Translator renders messages in one language.
type Translator struct {
	lang    Lang
	printer *message.Printer
}

func newTranslator(lang Lang) *Translator {
	if _, ok := langTags[lang]; !ok {
		lang = defaultLang
	}

	return &Translator{
		lang:    lang,
		printer: message.NewPrinter(langTags[lang], message.Catalog(messageCatalog)),
	}
}

func (t *Translator) Lang() Lang {
	return t.lang
}

func (t *Translator) T(key Message, args ...any) string {
	return t.printer.Sprintf(string(key), args...)
}

// Labels returns every static UI string keyed by message name.
func (t *Translator) Labels() map[string]string {
	labels := make(map[string]string, len(uiLabels))
	for _, key := range uiLabels {
		labels[string(key)] = t.T(key)
	}
	return labels
}
