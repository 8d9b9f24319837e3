package websocket

import (
	"context"
	"log"
	"time"
)

// DefaultWatchInterval период отправки состояния игры
const DefaultWatchInterval = time.Second

// Snapshot состояние игры для отправки клиенту
type Snapshot struct {
	Payload  interface{}
	Finished bool
}

// SnapshotFunc читает текущее состояние игры. Не должна изменять игру.
type SnapshotFunc func(ctx context.Context) (*Snapshot, error)

// Watch периодически отправляет клиенту состояние игры, пока игра не завершится
// или клиент не отключится. Завершение по времени здесь не выполняется,
// его фиксирует следующая изменяющая операция игрока.
func Watch(ctx context.Context, client *Client, interval time.Duration, snapshot SnapshotFunc) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer client.Close()

	for {
		if !pushSnapshot(ctx, client, snapshot) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-client.Done():
			return
		case <-ticker.C:
		}
	}
}

// pushSnapshot отправляет одно состояние. false означает, что поток нужно закрыть.
func pushSnapshot(ctx context.Context, client *Client, snapshot SnapshotFunc) bool {
	snap, err := snapshot(ctx)
	if err != nil {
		log.Printf("[websocket.Watch] Ошибка чтения игры %d (UserID: %d): %v", client.GameID, client.UserID, err)
		if msg, mErr := NewMessage(ERROR, map[string]string{"error": err.Error()}); mErr == nil {
			client.Send(msg)
		}
		return false
	}

	msgType := GAME_STATE
	if snap.Finished {
		msgType = GAME_FINISHED
	}
	msg, err := NewMessage(msgType, snap.Payload)
	if err != nil {
		log.Printf("[websocket.Watch] Ошибка сериализации игры %d: %v", client.GameID, err)
		return false
	}
	if !client.Send(msg) {
		return false
	}
	return !snap.Finished
}
