package application

import (
	"context"
	"errors"
	"sync"
	"time"

	movieDomain "github.com/davicafu/cinelab/internal/movie/domain"
	"github.com/davicafu/cinelab/pkg/metrics"
	"go.uber.org/zap"
)

var ErrInvalidRange = errors.New("start must be before end")

// maxBuffered acota lo que se guarda mientras ClickHouse no responde.
const maxBuffered = 10000

// ActivityService acumula la actividad de películas y la vuelca por lotes.
type ActivityService struct {
	repo      movieDomain.MovieAnalyticsRepository
	batchSize int
	log       *zap.Logger

	mu     sync.Mutex
	buffer []movieDomain.MovieActivity
}

// NewActivityService admite repo nil: la analítica queda desactivada.
func NewActivityService(repo movieDomain.MovieAnalyticsRepository, batchSize int, log *zap.Logger) *ActivityService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ActivityService{repo: repo, batchSize: batchSize, log: log}
}

func (s *ActivityService) Enabled() bool { return s.repo != nil }

// Record encola una fila y vuelca si el lote está completo.
func (s *ActivityService) Record(ctx context.Context, a movieDomain.MovieActivity) error {
	if s.repo == nil {
		return nil
	}
	s.mu.Lock()
	s.buffer = append(s.buffer, a)
	full := len(s.buffer) >= s.batchSize
	s.mu.Unlock()

	if full {
		return s.Flush(ctx)
	}
	return nil
}

// Flush envía lo pendiente. Si falla, las filas vuelven al buffer.
func (s *ActivityService) Flush(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	s.mu.Lock()
	batch := s.buffer
	s.buffer = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	if err := s.repo.LogBatch(ctx, batch); err != nil {
		s.mu.Lock()
		s.buffer = append(batch, s.buffer...)
		if over := len(s.buffer) - maxBuffered; over > 0 {
			s.buffer = s.buffer[over:]
			s.log.Warn("⚠️ Activity buffer full, dropping oldest rows", zap.Int("dropped", over))
		}
		s.mu.Unlock()
		return err
	}

	metrics.ActivityRowsFlushed.Add(float64(len(batch)))
	s.log.Debug("📊 Activity batch stored", zap.Int("rows", len(batch)))
	return nil
}

// Pending es el número de filas sin volcar.
func (s *ActivityService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}

// Start vuelca periódicamente hasta que se cancela ctx, con un último volcado al salir.
func (s *ActivityService) Start(ctx context.Context, interval time.Duration) {
	if s.repo == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := s.Flush(flushCtx); err != nil {
				s.log.Warn("⚠️ Final activity flush failed", zap.Error(err))
			}
			cancel()
			s.log.Info("🛑 Activity flusher detenido.")
			return
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				s.log.Warn("⚠️ Activity flush failed", zap.Error(err))
			}
		}
	}
}

// DailyTrend agrega la actividad por día en [start, end].
func (s *ActivityService) DailyTrend(ctx context.Context, start, end time.Time) ([]movieDomain.DailyMovieTrend, error) {
	if s.repo == nil {
		return nil, movieDomain.ErrAnalyticsDisabled
	}
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}
	return s.repo.GetDailyTrend(ctx, start, end)
}
