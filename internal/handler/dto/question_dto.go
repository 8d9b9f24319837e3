package dto

import "github.com/yourusername/millionaire-api/internal/domain/entity"

// CreateQuestionRequest вопрос для загрузки в банк
type CreateQuestionRequest struct {
	Level         int      `json:"level" binding:"min=0"`
	Text          string   `json:"text" binding:"required,max=500"`
	Options       []string `json:"options" binding:"required,len=4,dive,required"`
	CorrectOption int      `json:"correct_option" binding:"required,min=1,max=4"`
}

// ToEntity преобразует запрос в сущность вопроса
func (r CreateQuestionRequest) ToEntity() entity.Question {
	return entity.Question{
		Level:         r.Level,
		Text:          r.Text,
		Options:       entity.StringArray(r.Options),
		CorrectOption: r.CorrectOption,
	}
}

// BulkCreateQuestionsRequest пакетная загрузка вопросов
type BulkCreateQuestionsRequest struct {
	Questions []CreateQuestionRequest `json:"questions" binding:"required,min=1,max=1000,dive"`
}

// LevelStatDTO количество вопросов уровня
type LevelStatDTO struct {
	Level int   `json:"level"`
	Prize int64 `json:"prize"`
	Count int64 `json:"count"`
}

// QuestionStatsResponse наполненность банка вопросов
type QuestionStatsResponse struct {
	Levels []LevelStatDTO `json:"levels"`
	Total  int64          `json:"total"`
	// Ready true, если на каждом уровне есть хотя бы один вопрос
	Ready bool `json:"ready"`
}
