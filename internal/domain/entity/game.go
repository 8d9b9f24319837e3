package entity

import (
	"time"
)

// GameStatus итоговый статус игры. Не хранится в БД, вычисляется по полям игры.
type GameStatus string

// Статусы игры
const (
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusFail       GameStatus = "fail"
	GameStatusTimeout    GameStatus = "timeout"
	GameStatusWon        GameStatus = "won"
	GameStatusMoney      GameStatus = "money"
)

// Game одиночная игра пользователя. Владеет своими вопросами (по одному на уровень).
type Game struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	User             *User          `gorm:"foreignKey:UserID" json:"-"`
	CurrentLevel     int            `gorm:"not null;default:0" json:"current_level"`
	Prize            int64          `gorm:"not null;default:0" json:"prize"`
	IsFailed         bool           `gorm:"not null;default:false" json:"is_failed"`
	StartedAt        time.Time      `gorm:"not null" json:"started_at"`
	FinishedAt       *time.Time     `gorm:"type:timestamptz" json:"finished_at,omitempty"`
	FiftyFiftyUsed   bool           `gorm:"not null;default:false" json:"fifty_fifty_used"`
	AudienceHelpUsed bool           `gorm:"not null;default:false" json:"audience_help_used"`
	FriendCallUsed   bool           `gorm:"not null;default:false" json:"friend_call_used"`
	GameQuestions    []GameQuestion `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Game) TableName() string {
	return "games"
}

// Finished игра завершена, если проставлено время окончания
func (g *Game) Finished() bool {
	return g.FinishedAt != nil
}

// PreviousLevel уровень последнего пройденного вопроса (-1, если ни одного)
func (g *Game) PreviousLevel() int {
	return g.CurrentLevel - 1
}

// GameQuestionAt возвращает вопрос игры для уровня или nil
func (g *Game) GameQuestionAt(level int) *GameQuestion {
	for i := range g.GameQuestions {
		if g.GameQuestions[i].Level == level {
			return &g.GameQuestions[i]
		}
	}
	return nil
}

// CurrentGameQuestion вопрос текущего уровня
func (g *Game) CurrentGameQuestion() *GameQuestion {
	return g.GameQuestionAt(g.CurrentLevel)
}

// PreviousGameQuestion последний пройденный (или проваленный) вопрос
func (g *Game) PreviousGameQuestion() *GameQuestion {
	return g.GameQuestionAt(g.PreviousLevel())
}

// HelpUsed сообщает, использована ли подсказка
func (g *Game) HelpUsed(kind HelpKind) bool {
	switch kind {
	case HelpFiftyFifty:
		return g.FiftyFiftyUsed
	case HelpAudienceHelp:
		return g.AudienceHelpUsed
	case HelpFriendCall:
		return g.FriendCallUsed
	}
	return false
}

// MarkHelpUsed выставляет флаг использования подсказки
func (g *Game) MarkHelpUsed(kind HelpKind) {
	switch kind {
	case HelpFiftyFifty:
		g.FiftyFiftyUsed = true
	case HelpAudienceHelp:
		g.AudienceHelpUsed = true
	case HelpFriendCall:
		g.FriendCallUsed = true
	}
}
