package usecase

import (
	"context"
	"errors"
	"fmt"
	"listing-organizer/internal/constants"
	"listing-organizer/internal/contextkeys"
	"listing-organizer/internal/core/domain"
	"listing-organizer/internal/core/port"
	"listing-organizer/internal/core/port/usecases_port"
	"strings"
	"sync"
	"time"
)

// BoardConfig - параметры доски.
type BoardConfig struct {
	FilterDebounce   time.Duration
	CacheTTL         time.Duration
	ReconcileTimeout time.Duration
}

// userBoard - состояние доски одного пользователя.
// generation растет при каждом старте загрузки и при каждом локальном изменении,
// applied - поколение данных, которые сейчас лежат в кэше.
type userBoard struct {
	mu         sync.Mutex
	generation uint64
	applied    uint64
	filters    domain.BoardFilters
	hasFilters bool
	pending    domain.BoardFilters
	timer      *time.Timer
}

// BoardUseCase раскладывает объекты по колонкам и синхронизирует перестановки с внешним API.
// Локальные изменения применяются сразу, затем состояние перечитывается с сервера.
type BoardUseCase struct {
	api        port.ListingsAPIPort
	cache      port.BoardCachePort
	properties port.PropertyCachePort
	events     port.EventPublisherPort
	cfg        BoardConfig
	now        func() time.Time

	mu    sync.Mutex
	users map[string]*userBoard
	wg    sync.WaitGroup
}

var _ usecases_port.BoardUseCasePort = (*BoardUseCase)(nil)

func NewBoardUseCase(api port.ListingsAPIPort, cache port.BoardCachePort, properties port.PropertyCachePort, events port.EventPublisherPort, cfg BoardConfig) *BoardUseCase {
	if cfg.ReconcileTimeout <= 0 {
		cfg.ReconcileTimeout = 30 * time.Second
	}
	return &BoardUseCase{
		api:        api,
		cache:      cache,
		properties: properties,
		events:     events,
		cfg:        cfg,
		now:        time.Now,
		users:      make(map[string]*userBoard),
	}
}

func (uc *BoardUseCase) user(userID string) *userBoard {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	ub, ok := uc.users[userID]
	if !ok {
		ub = &userBoard{}
		uc.users[userID] = ub
	}
	return ub
}

func boardLogger(ctx context.Context, method string, cred domain.Credential) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "Board",
		"method":   method,
		"user_id":  cred.UserID,
	})
}

// GetBoards отдает доску из кэша, если она загружена с теми же фильтрами, иначе загружает.
func (uc *BoardUseCase) GetBoards(ctx context.Context, cred domain.Credential, filters domain.BoardFilters) (domain.BoardSet, error) {
	ucLogger := boardLogger(ctx, "GetBoards", cred)

	cached, err := uc.cache.Get(ctx, cred.UserID)
	switch {
	case err == nil && sameFilters(cached.Filters, filters):
		ucLogger.Debug("Boards served from cache", nil)
		return *cached, nil
	case err != nil && !errors.Is(err, domain.ErrCacheMiss):
		ucLogger.Warn("Board cache read failed", port.Fields{"error": err.Error()})
	}
	return uc.LoadBoards(ctx, cred, filters)
}

// LoadBoards загружает доску с сервера. Результат более старой загрузки
// не перетирает более новое состояние.
func (uc *BoardUseCase) LoadBoards(ctx context.Context, cred domain.Credential, filters domain.BoardFilters) (domain.BoardSet, error) {
	ucLogger := boardLogger(ctx, "LoadBoards", cred)
	ub := uc.user(cred.UserID)

	ub.mu.Lock()
	ub.generation++
	gen := ub.generation
	ub.filters = filters
	ub.hasFilters = true
	ub.mu.Unlock()

	remote, err := uc.api.FetchBoards(ctx, cred, filters)
	if err != nil {
		ucLogger.Error("Failed to fetch boards", err, nil)
		return domain.BoardSet{}, err
	}

	set := domain.BoardSet{
		Boards:  domain.GroupBuckets(constants.BoardBuckets, constants.SentinelBucket, remote),
		Filters: filters,
	}

	ub.mu.Lock()
	defer ub.mu.Unlock()
	if gen < ub.applied {
		ucLogger.Debug("Discarding stale board fetch", port.Fields{"generation": gen, "applied": ub.applied})
		if cached, err := uc.cache.Get(ctx, cred.UserID); err == nil {
			return *cached, nil
		}
		return set, nil
	}
	ub.applied = gen
	if err := uc.cache.Set(ctx, cred.UserID, set, uc.cfg.CacheTTL); err != nil {
		ucLogger.Warn("Failed to store boards in cache", port.Fields{"error": err.Error()})
	}

	ucLogger.Debug("Boards loaded", port.Fields{"generation": gen})
	return set, nil
}

// SetFilters откладывает загрузку до паузы во вводе. Каждый вызов перезапускает таймер.
func (uc *BoardUseCase) SetFilters(ctx context.Context, cred domain.Credential, filters domain.BoardFilters) {
	ub := uc.user(cred.UserID)
	bg := context.WithoutCancel(ctx)

	ub.mu.Lock()
	defer ub.mu.Unlock()
	ub.pending = filters
	// Остановленный таймер уже учтен в wg, новый занимает его место.
	if ub.timer == nil || !ub.timer.Stop() {
		uc.wg.Add(1)
	}
	ub.timer = time.AfterFunc(uc.cfg.FilterDebounce, func() {
		defer uc.wg.Done()
		uc.applyPendingFilters(bg, cred, ub)
	})
}

func (uc *BoardUseCase) applyPendingFilters(ctx context.Context, cred domain.Credential, ub *userBoard) {
	ucLogger := boardLogger(ctx, "SetFilters", cred)

	ub.mu.Lock()
	filters := ub.pending
	unchanged := ub.hasFilters && sameFilters(ub.filters, filters)
	ub.mu.Unlock()

	if unchanged {
		ucLogger.Debug("Filters unchanged, skipping reload", nil)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, uc.cfg.ReconcileTimeout)
	defer cancel()
	if _, err := uc.LoadBoards(ctx, cred, filters); err != nil {
		ucLogger.Error("Debounced board reload failed", err, nil)
	}
}

// OnDragEnd сразу переставляет карточку в кэше и в фоне сохраняет новую позицию,
// после чего перечитывает доску. Отката при ошибке сохранения нет.
// Если доска еще не загружена, она загружается перед перестановкой.
func (uc *BoardUseCase) OnDragEnd(ctx context.Context, cred domain.Credential, drag domain.DragResult) (*domain.BoardSet, error) {
	ucLogger := boardLogger(ctx, "OnDragEnd", cred)
	if drag.DestBucket == nil {
		return nil, nil
	}
	dest := *drag.DestBucket

	loaded, err := uc.currentBoards(ctx, cred)
	if err != nil {
		return nil, err
	}

	ub := uc.user(cred.UserID)
	ub.mu.Lock()
	// Пока ждали блокировку, кэш мог обновиться: переставляем от последнего состояния.
	if cached, err := uc.cache.Get(ctx, cred.UserID); err == nil {
		loaded = *cached
	}
	updated := loaded.Clone()
	card, err := updated.Move(drag.SourceBucket, drag.SourceIndex, dest, drag.DestIndex)
	if err != nil {
		ub.mu.Unlock()
		return nil, err
	}
	ub.generation++
	ub.applied = ub.generation
	if err := uc.cache.Set(ctx, cred.UserID, updated, uc.cfg.CacheTTL); err != nil {
		ucLogger.Warn("Failed to store optimistic board", port.Fields{"error": err.Error()})
	}
	ub.mu.Unlock()

	assignment := domain.BoardAssignment{BucketID: bucketID(dest), Index: drag.DestIndex}
	ucLogger.Info("Card moved", port.Fields{"property_id": card.ID, "from": drag.SourceBucket, "to": dest, "index": drag.DestIndex})

	uc.reconcileAsync(ctx, cred, func(ctx context.Context) error {
		if err := uc.api.UpdatePropertyBoardAssignment(ctx, cred, card.ID, assignment); err != nil {
			return err
		}
		uc.forgetProperty(ctx, cred, card.ID)
		uc.publish(ctx, cred, domain.EventPropertyBoardMoved, card.ID, map[string]any{"bucket": dest, "index": drag.DestIndex})
		return nil
	})
	return &updated, nil
}

// MarkUnavailable снимает объект с публикации и перечитывает доску, даже если вызов не удался.
func (uc *BoardUseCase) MarkUnavailable(ctx context.Context, cred domain.Credential, propertyID string) (domain.BoardSet, error) {
	ucLogger := boardLogger(ctx, "MarkUnavailable", cred)
	if strings.TrimSpace(propertyID) == "" {
		return domain.BoardSet{}, fmt.Errorf("%w: empty property id", domain.ErrInvalidIdentifier)
	}

	persistErr := uc.api.UpdatePropertyAvailability(ctx, cred, propertyID, false)
	if persistErr != nil {
		ucLogger.Error("Failed to mark property unavailable", persistErr, port.Fields{"property_id": propertyID})
	} else {
		uc.forgetProperty(ctx, cred, propertyID)
		uc.publish(ctx, cred, domain.EventPropertyAvailabilityChanged, propertyID, map[string]any{"available": false})
	}

	set, err := uc.refetch(ctx, cred)
	if persistErr != nil {
		return set, persistErr
	}
	return set, err
}

// ReassignBucket переносит объект в другую колонку, сохраняя его текущий индекс.
func (uc *BoardUseCase) ReassignBucket(ctx context.Context, cred domain.Credential, propertyID, bucket string) (domain.BoardSet, error) {
	ucLogger := boardLogger(ctx, "ReassignBucket", cred)
	if strings.TrimSpace(propertyID) == "" {
		return domain.BoardSet{}, fmt.Errorf("%w: empty property id", domain.ErrInvalidIdentifier)
	}
	if !knownBucket(bucket) {
		return domain.BoardSet{}, fmt.Errorf("%w: %q", domain.ErrBucketUnknown, bucket)
	}

	current, err := uc.currentBoards(ctx, cred)
	if err != nil {
		return domain.BoardSet{}, err
	}
	_, _, card, ok := current.Locate(propertyID)
	if !ok {
		return domain.BoardSet{}, fmt.Errorf("%w: %s", domain.ErrCardNotFound, propertyID)
	}

	assignment := domain.BoardAssignment{BucketID: bucketID(bucket), Index: card.Index}
	persistErr := uc.api.UpdatePropertyBoardAssignment(ctx, cred, propertyID, assignment)
	if persistErr != nil {
		ucLogger.Error("Failed to reassign bucket", persistErr, port.Fields{"property_id": propertyID, "bucket": bucket})
	} else {
		uc.forgetProperty(ctx, cred, propertyID)
		uc.publish(ctx, cred, domain.EventPropertyBoardMoved, propertyID, map[string]any{"bucket": bucket, "index": card.Index})
	}

	set, err := uc.refetch(ctx, cred)
	if persistErr != nil {
		return set, persistErr
	}
	return set, err
}

// Wait блокируется до завершения фоновых синхронизаций и отложенных загрузок.
func (uc *BoardUseCase) Wait() {
	uc.wg.Wait()
}

func (uc *BoardUseCase) currentBoards(ctx context.Context, cred domain.Credential) (domain.BoardSet, error) {
	cached, err := uc.cache.Get(ctx, cred.UserID)
	if err == nil {
		return *cached, nil
	}
	ub := uc.user(cred.UserID)
	ub.mu.Lock()
	filters := ub.filters
	ub.mu.Unlock()
	return uc.LoadBoards(ctx, cred, filters)
}

// refetch загружает доску с последними примененными фильтрами. Пока идет загрузка,
// кэш остается доступным, а устаревший ответ отбрасывается по поколению.
// Если загрузка не удалась и новых изменений не было, кэш сбрасывается:
// локальное состояние не подтверждено сервером.
func (uc *BoardUseCase) refetch(ctx context.Context, cred domain.Credential) (domain.BoardSet, error) {
	ub := uc.user(cred.UserID)
	ub.mu.Lock()
	filters := ub.filters
	applied := ub.applied
	ub.mu.Unlock()

	set, err := uc.LoadBoards(ctx, cred, filters)
	if err == nil {
		return set, nil
	}

	ub.mu.Lock()
	defer ub.mu.Unlock()
	if ub.applied == applied {
		if err := uc.cache.Invalidate(ctx, cred.UserID); err != nil {
			boardLogger(ctx, "refetch", cred).Warn("Failed to invalidate board cache", port.Fields{"error": err.Error()})
		}
	}
	return set, err
}

// forgetProperty убирает локальную копию объекта после изменения его доски или доступности.
func (uc *BoardUseCase) forgetProperty(ctx context.Context, cred domain.Credential, propertyID string) {
	if err := uc.properties.Delete(ctx, cred.UserID, propertyID); err != nil {
		boardLogger(ctx, "forgetProperty", cred).Warn("Failed to drop cached property", port.Fields{"error": err.Error(), "property_id": propertyID})
	}
}

// reconcileAsync выполняет persist и безусловное перечитывание доски в фоне.
// Контекст запроса отвязывается от отмены, чтобы синхронизация пережила ответ клиенту.
func (uc *BoardUseCase) reconcileAsync(ctx context.Context, cred domain.Credential, persist func(context.Context) error) {
	bg := context.WithoutCancel(ctx)
	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		ctx, cancel := context.WithTimeout(bg, uc.cfg.ReconcileTimeout)
		defer cancel()

		ucLogger := boardLogger(ctx, "reconcile", cred)
		if err := persist(ctx); err != nil {
			ucLogger.Error("Failed to persist board change", err, nil)
		}
		if _, err := uc.refetch(ctx, cred); err != nil {
			ucLogger.Error("Failed to refetch boards after change", err, nil)
		}
	}()
}

func (uc *BoardUseCase) publish(ctx context.Context, cred domain.Credential, eventType, propertyID string, attrs map[string]any) {
	event := domain.PropertyEvent{
		Type:       eventType,
		PropertyID: propertyID,
		UserID:     cred.UserID,
		OccurredAt: uc.now().UTC(),
		Attributes: attrs,
	}
	if err := uc.events.Publish(ctx, event); err != nil {
		boardLogger(ctx, "publish", cred).Warn("Failed to publish property event", port.Fields{"error": err.Error(), "event_type": eventType})
	}
}

// bucketID переводит имя колонки в идентификатор API: у колонки по умолчанию его нет.
func bucketID(name string) *string {
	if name == constants.SentinelBucket {
		return nil
	}
	id := name
	return &id
}

func knownBucket(name string) bool {
	for _, b := range constants.BoardBuckets {
		if b == name {
			return true
		}
	}
	return false
}
