package dto

import (
	"time"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	"github.com/yourusername/millionaire-api/internal/handler/helper"
	"github.com/yourusername/millionaire-api/internal/service/gameengine"
)

// PrizeStepDTO ступень призовой лестницы
type PrizeStepDTO struct {
	Level     int   `json:"level"`
	Prize     int64 `json:"prize"`
	Fireproof bool  `json:"fireproof"`
}

// HelpsDTO использованные подсказки
type HelpsDTO struct {
	FiftyFifty   bool `json:"fifty_fifty"`
	AudienceHelp bool `json:"audience_help"`
	FriendCall   bool `json:"friend_call"`
}

// GameQuestionDTO текущий вопрос игры без правильного ответа
type GameQuestionDTO struct {
	Level     int                    `json:"level"`
	Prize     int64                  `json:"prize"`
	Fireproof bool                   `json:"fireproof"`
	Text      string                 `json:"text"`
	Variants  []helper.AnswerVariant `json:"variants"`
	Help      entity.HelpState       `json:"help"`
}

// GameResponse состояние игры для клиента
type GameResponse struct {
	ID              uint              `json:"id"`
	Status          entity.GameStatus `json:"status"`
	CurrentLevel    int               `json:"current_level"`
	Prize           int64             `json:"prize"`
	FireproofPrize  int64             `json:"fireproof_prize"`
	StartedAt       time.Time         `json:"started_at"`
	FinishedAt      *time.Time        `json:"finished_at,omitempty"`
	TimeLeftSec     int               `json:"time_left_sec"`
	HelpsUsed       HelpsDTO          `json:"helps_used"`
	CurrentQuestion *GameQuestionDTO  `json:"current_question,omitempty"`
	PrizeLadder     []PrizeStepDTO    `json:"prize_ladder,omitempty"`
}

// AnswerResponse результат ответа на вопрос
type AnswerResponse struct {
	Correct bool          `json:"correct"`
	Game    *GameResponse `json:"game"`
	// CorrectAnswer правильная буква, только для завершённой игры
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// ActionResponse результат выхода с деньгами или подсказки
type ActionResponse struct {
	Applied bool          `json:"applied"`
	Game    *GameResponse `json:"game"`
}

// GameHistoryItemDTO строка истории игр
type GameHistoryItemDTO struct {
	ID           uint              `json:"id"`
	Status       entity.GameStatus `json:"status"`
	CurrentLevel int               `json:"current_level"`
	Prize        int64             `json:"prize"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   *time.Time        `json:"finished_at,omitempty"`
	HelpsUsed    HelpsDTO          `json:"helps_used"`
}

// PaginatedGamesResponse пагинированная история игр
type PaginatedGamesResponse struct {
	Games   []*GameHistoryItemDTO `json:"games"`
	Total   int64                 `json:"total"`
	Page    int                   `json:"page"`
	PerPage int                   `json:"per_page"`
}

func helpsOf(game *entity.Game) HelpsDTO {
	return HelpsDTO{
		FiftyFifty:   game.FiftyFiftyUsed,
		AudienceHelp: game.AudienceHelpUsed,
		FriendCall:   game.FriendCallUsed,
	}
}

// NewPrizeLadder строит призовую лестницу по правилам
func NewPrizeLadder(rules *gameengine.Rules) []PrizeStepDTO {
	prizes := rules.Prizes()
	ladder := make([]PrizeStepDTO, len(prizes))
	for level, prize := range prizes {
		ladder[level] = PrizeStepDTO{Level: level, Prize: prize, Fireproof: rules.IsFireproof(level)}
	}
	return ladder
}

// NewGameResponse создает ответ из игры. Текущий вопрос включается только для активной игры.
func NewGameResponse(game *entity.Game, engine *gameengine.Engine, withLadder bool) *GameResponse {
	rules := engine.Rules()
	resp := &GameResponse{
		ID:             game.ID,
		Status:         engine.Status(game),
		CurrentLevel:   game.CurrentLevel,
		Prize:          game.Prize,
		FireproofPrize: rules.FireproofPrize(game.PreviousLevel()),
		StartedAt:      game.StartedAt,
		FinishedAt:     game.FinishedAt,
		TimeLeftSec:    int(engine.TimeLeft(game).Seconds()),
		HelpsUsed:      helpsOf(game),
	}

	if !game.Finished() {
		if gq := game.CurrentGameQuestion(); gq != nil {
			resp.CurrentQuestion = &GameQuestionDTO{
				Level:     gq.Level,
				Prize:     rules.PrizeAt(gq.Level),
				Fireproof: rules.IsFireproof(gq.Level),
				Text:      gq.Text(),
				Variants:  helper.ConvertVariantsToList(gq),
				Help:      gq.HelpHash,
			}
		}
	}
	if withLadder {
		resp.PrizeLadder = NewPrizeLadder(rules)
	}
	return resp
}

// NewGameHistoryItem создает строку истории игр
func NewGameHistoryItem(game *entity.Game, engine *gameengine.Engine) *GameHistoryItemDTO {
	return &GameHistoryItemDTO{
		ID:           game.ID,
		Status:       engine.Status(game),
		CurrentLevel: game.CurrentLevel,
		Prize:        game.Prize,
		StartedAt:    game.StartedAt,
		FinishedAt:   game.FinishedAt,
		HelpsUsed:    helpsOf(game),
	}
}
