package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	"github.com/yourusername/millionaire-api/internal/domain/repository"
	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
	"github.com/yourusername/millionaire-api/internal/service/gameengine"
)

// ErrProvisioning в банке нет вопроса для одного из уровней, игра не создана
var ErrProvisioning = fmt.Errorf("%w: question bank cannot provision a game", apperrors.ErrNotFound)

// ErrGameCreationLocked параллельный запрос уже создаёт игру для этого пользователя
var ErrGameCreationLocked = fmt.Errorf("%w: game creation already in progress", apperrors.ErrConflict)

// GameServiceOptions настройки Redis-ключей сервиса игр
type GameServiceOptions struct {
	CreationLockTTL time.Duration
	ActiveGameTTL   time.Duration
}

// AnswerResult результат ответа на вопрос
type AnswerResult struct {
	Correct bool
	Game    *entity.Game
	// CorrectAnswerKey правильная буква, раскрывается только после окончания игры
	CorrectAnswerKey string
}

// GameService управляет жизненным циклом игр: создание, ответы, подсказки, выход с деньгами
type GameService struct {
	gameRepo     repository.GameRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository // может быть nil
	engine       *gameengine.Engine
	opts         GameServiceOptions
}

// NewGameService создает новый сервис игр и возвращает ошибку при проблемах
func NewGameService(
	gameRepo repository.GameRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
	engine *gameengine.Engine,
	opts GameServiceOptions,
) (*GameService, error) {
	if gameRepo == nil {
		return nil, fmt.Errorf("GameRepository is required for GameService")
	}
	if questionRepo == nil {
		return nil, fmt.Errorf("QuestionRepository is required for GameService")
	}
	if engine == nil {
		return nil, fmt.Errorf("Engine is required for GameService")
	}
	if opts.CreationLockTTL <= 0 {
		opts.CreationLockTTL = 10 * time.Second
	}
	if opts.ActiveGameTTL <= 0 {
		opts.ActiveGameTTL = engine.Rules().TimeLimit()
	}

	return &GameService{
		gameRepo:     gameRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		engine:       engine,
		opts:         opts,
	}, nil
}

// Engine возвращает движок игры (для вычисления статуса и оставшегося времени в ответах API)
func (s *GameService) Engine() *gameengine.Engine {
	return s.engine
}

func creationLockKey(userID uint) string {
	return fmt.Sprintf("user:%d:game_create_lock", userID)
}

func activeGameKey(userID uint) string {
	return fmt.Sprintf("user:%d:active_game", userID)
}

// CreateGame создает новую игру: по одному случайному вопросу на каждый уровень.
// У пользователя не может быть второй незавершённой игры.
func (s *GameService) CreateGame(ctx context.Context, userID uint) (*entity.Game, error) {
	release, err := s.acquireCreationLock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.gameRepo.GetInProgressByUserID(ctx, userID)
	if err == nil {
		// Просроченная игра завершается и не мешает начать новую
		current, err = s.finishIfTimedOut(ctx, userID, current)
		if err != nil {
			return nil, err
		}
		if !current.Finished() {
			return nil, fmt.Errorf("%w: game #%d", repository.ErrGameInProgress, current.ID)
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	rules := s.engine.Rules()
	questions := make([]*entity.Question, 0, rules.LevelsCount())
	for level := 0; level < rules.LevelsCount(); level++ {
		q, err := s.questionRepo.GetRandomByLevel(ctx, level)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				log.Printf("[GameService.CreateGame] Нет вопросов для уровня %d (user=%d)", level, userID)
				return nil, fmt.Errorf("%w: level %d", ErrProvisioning, level)
			}
			return nil, err
		}
		questions = append(questions, q)
	}

	game, err := s.engine.NewGame(userID, questions)
	if err != nil {
		return nil, err
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		log.Printf("[GameService.CreateGame] Ошибка сохранения игры для пользователя ID=%d: %v", userID, err)
		return nil, err
	}

	s.cacheActiveGame(ctx, userID, game.ID)
	log.Printf("[GameService.CreateGame] Создана игра ID=%d для пользователя ID=%d", game.ID, userID)
	return game, nil
}

// acquireCreationLock берёт Redis-блокировку создания игры. Без Redis блокировка не используется,
// уникальный индекс в БД всё равно не даст создать вторую игру.
func (s *GameService) acquireCreationLock(ctx context.Context, userID uint) (func(), error) {
	if s.cacheRepo == nil {
		return func() {}, nil
	}

	key := creationLockKey(userID)
	token := uuid.NewString()
	acquired, err := s.cacheRepo.SetNX(ctx, key, token, s.opts.CreationLockTTL)
	if err != nil {
		log.Printf("[GameService] Redis недоступен, создаём игру без блокировки (user=%d): %v", userID, err)
		return func() {}, nil
	}
	if !acquired {
		return nil, ErrGameCreationLocked
	}

	return func() {
		if _, err := s.cacheRepo.ReleaseLock(context.Background(), key, token); err != nil {
			log.Printf("[GameService] Ошибка снятия блокировки %s: %v", key, err)
		}
	}, nil
}

func (s *GameService) cacheActiveGame(ctx context.Context, userID, gameID uint) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Set(ctx, activeGameKey(userID), gameID, s.opts.ActiveGameTTL); err != nil {
		log.Printf("[GameService] Ошибка кеширования активной игры пользователя ID=%d: %v", userID, err)
	}
}

func (s *GameService) forgetActiveGame(ctx context.Context, userID uint) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(ctx, activeGameKey(userID)); err != nil {
		log.Printf("[GameService] Ошибка удаления активной игры из кеша для пользователя ID=%d: %v", userID, err)
	}
}

// GetGame возвращает игру пользователя
func (s *GameService) GetGame(ctx context.Context, userID, gameID uint) (*entity.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.UserID != userID {
		return nil, fmt.Errorf("%w: game #%d belongs to another user", apperrors.ErrForbidden, gameID)
	}
	return game, nil
}

// GetCurrentGame возвращает незавершённую игру пользователя.
// Игра, у которой истекло время, завершается при чтении.
func (s *GameService) GetCurrentGame(ctx context.Context, userID uint) (*entity.Game, error) {
	gameID, ok := s.cachedActiveGame(ctx, userID)
	if ok {
		game, err := s.GetGame(ctx, userID, gameID)
		if err == nil && !game.Finished() {
			return s.finishIfTimedOut(ctx, userID, game)
		}
		s.forgetActiveGame(ctx, userID)
	}

	game, err := s.gameRepo.GetInProgressByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cacheActiveGame(ctx, userID, game.ID)
	return s.finishIfTimedOut(ctx, userID, game)
}

func (s *GameService) cachedActiveGame(ctx context.Context, userID uint) (uint, bool) {
	if s.cacheRepo == nil {
		return 0, false
	}
	raw, err := s.cacheRepo.Get(ctx, activeGameKey(userID))
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (s *GameService) finishIfTimedOut(ctx context.Context, userID uint, game *entity.Game) (*entity.Game, error) {
	if !s.engine.TimedOut(game) {
		return game, nil
	}
	return s.CheckTimeout(ctx, userID, game.ID)
}

// ListUserGames возвращает историю игр пользователя с общим количеством
func (s *GameService) ListUserGames(ctx context.Context, userID uint, page, pageSize int) ([]entity.Game, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.gameRepo.ListByUserID(ctx, userID, pageSize, (page-1)*pageSize)
}

// ListAllUserGames возвращает все игры пользователя (для выгрузки)
func (s *GameService) ListAllUserGames(ctx context.Context, userID uint) ([]entity.Game, error) {
	games, _, err := s.gameRepo.ListByUserID(ctx, userID, 0, 0)
	return games, err
}

// Answer отвечает на текущий вопрос игры
func (s *GameService) Answer(ctx context.Context, userID, gameID uint, letter string) (*AnswerResult, error) {
	if !entity.IsValidLetter(letter) {
		return nil, entity.ErrInvalidLetter
	}

	var correct bool
	game, err := s.mutate(ctx, userID, gameID, func(game *entity.Game) (*entity.GameQuestion, error) {
		var err error
		correct, err = s.engine.Answer(game, letter)
		return nil, err
	})
	if err != nil {
		return nil, err
	}

	result := &AnswerResult{Correct: correct, Game: game}
	if game.Finished() {
		// После окончания игры раскрываем правильный ответ на последний заданный вопрос
		q := game.CurrentGameQuestion()
		if q == nil {
			q = game.PreviousGameQuestion()
		}
		if q != nil {
			result.CorrectAnswerKey = q.CorrectAnswerKey()
		}
	}
	return result, nil
}

// TakeMoney завершает игру с выигрышем за последний пройденный уровень
func (s *GameService) TakeMoney(ctx context.Context, userID, gameID uint) (*entity.Game, bool, error) {
	var finished bool
	game, err := s.mutate(ctx, userID, gameID, func(game *entity.Game) (*entity.GameQuestion, error) {
		finished = s.engine.TakeMoney(game)
		return nil, nil
	})
	if err != nil {
		return nil, false, err
	}
	return game, finished, nil
}

// UseHelp применяет подсказку к текущему вопросу.
// false без ошибки означает, что подсказка уже использована или игра окончена.
func (s *GameService) UseHelp(ctx context.Context, userID, gameID uint, kind entity.HelpKind) (*entity.Game, bool, error) {
	if _, err := entity.ParseHelpKind(string(kind)); err != nil {
		return nil, false, err
	}

	var applied bool
	game, err := s.mutate(ctx, userID, gameID, func(game *entity.Game) (*entity.GameQuestion, error) {
		var err error
		applied, err = s.engine.UseHelp(game, kind)
		if err != nil || !applied {
			return nil, err
		}
		return game.CurrentGameQuestion(), nil
	})
	if err != nil {
		return nil, false, err
	}
	return game, applied, nil
}

// CheckTimeout завершает игру, если истекло время
func (s *GameService) CheckTimeout(ctx context.Context, userID, gameID uint) (*entity.Game, error) {
	return s.mutate(ctx, userID, gameID, func(game *entity.Game) (*entity.GameQuestion, error) {
		s.engine.CheckTimeout(game)
		return nil, nil
	})
}

// gameSnapshot поля игры, по которым определяется, нужно ли что-то записывать
type gameSnapshot struct {
	level     int
	finished  bool
	helpsUsed [3]bool
}

func snapshotOf(game *entity.Game) gameSnapshot {
	return gameSnapshot{
		level:     game.CurrentLevel,
		finished:  game.Finished(),
		helpsUsed: [3]bool{game.FiftyFiftyUsed, game.AudienceHelpUsed, game.FriendCallUsed},
	}
}

// mutate загружает игру под блокировкой, проверяет владельца и применяет fn.
// При переходе в завершённое состояние приз зачисляется на баланс в той же транзакции.
func (s *GameService) mutate(
	ctx context.Context,
	userID, gameID uint,
	fn func(game *entity.Game) (*entity.GameQuestion, error),
) (*entity.Game, error) {
	var justFinished bool

	game, err := s.gameRepo.UpdateLocked(ctx, gameID, func(game *entity.Game) (*repository.GameUpdate, error) {
		if game.UserID != userID {
			return nil, fmt.Errorf("%w: game #%d belongs to another user", apperrors.ErrForbidden, gameID)
		}

		before := snapshotOf(game)
		touched, err := fn(game)
		if err != nil {
			return nil, err
		}
		after := snapshotOf(game)
		if before == after && touched == nil {
			return nil, nil
		}

		update := &repository.GameUpdate{Question: touched}
		if !before.finished && after.finished {
			justFinished = true
			update.Credit = game.Prize
		}
		return update, nil
	})
	if err != nil {
		return nil, err
	}

	if justFinished {
		s.forgetActiveGame(ctx, userID)
		log.Printf("[GameService] Игра ID=%d завершена: статус=%s, приз=%d", game.ID, s.engine.Status(game), game.Prize)
	}
	return game, nil
}

// normalizePage приводит параметры пагинации к допустимым значениям
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	} else if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
