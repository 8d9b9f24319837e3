package websocket

import "encoding/json"

// Типы сообщений потока игры
const (
	// GAME_STATE текущее состояние игры и оставшееся время
	GAME_STATE = "GAME_STATE"

	// GAME_FINISHED игра завершена, после этого сообщения сервер закрывает соединение
	GAME_FINISHED = "GAME_FINISHED"

	// ERROR ошибка чтения игры
	ERROR = "ERROR"
)

// Message сообщение, отправляемое клиенту
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage сериализует данные в сообщение
func NewMessage(msgType string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: msgType, Data: raw})
}
