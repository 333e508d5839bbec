// Package conversation walks a user through the question graph and narrows the catalog
// with every answer until it can recommend perfumes.
package conversation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"perfume-advisor-be/internal/pkg/logger"
	"perfume-advisor-be/pkg/catalog"
	"perfume-advisor-be/pkg/filter"
	"perfume-advisor-be/pkg/formatter"
	"perfume-advisor-be/pkg/history"
	"perfume-advisor-be/pkg/questions"
)

const DefaultRootQuestionID = "1"

type Config struct {
	CatalogPath    string
	QuestionsPath  string
	DedupByModel   bool
	RootQuestionID string
	Formatter      formatter.Options
	Logger         logger.ILogger
}

// dataset is everything loaded once and shared read-only by all sessions.
type dataset struct {
	graph       *questions.Graph
	catalog     []catalog.Item
	brandModels []string
	formatter   *formatter.Formatter
	routes      map[string]Route
	root        string
}

// Advisor creates sessions once its data is loaded.
// Calls made before Initialize succeeds fail with ErrNotInitialized.
type Advisor struct {
	cfg  Config
	log  logger.ILogger
	data atomic.Pointer[dataset]
}

func NewAdvisor(cfg Config) *Advisor {
	if cfg.RootQuestionID == "" {
		cfg.RootQuestionID = DefaultRootQuestionID
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Advisor{cfg: cfg, log: log}
}

// Initialize loads the catalog and the question graph concurrently and publishes both at once.
func (a *Advisor) Initialize(ctx context.Context) error {
	var (
		items []catalog.Item
		graph *questions.Graph
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		loaded, _, err := catalog.LoadFile(a.cfg.CatalogPath, catalog.Options{
			DedupByModel: a.cfg.DedupByModel,
			Logger:       a.log,
		})
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		items = loaded
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		loaded, err := questions.LoadFile(a.cfg.QuestionsPath)
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
		graph = loaded
		return nil
	})
	if err := g.Wait(); err != nil {
		a.log.Error("ADVISOR", "Initialization failed", map[string]interface{}{"error": err.Error()})
		return err
	}

	return a.Publish(items, graph)
}

// Publish installs already-loaded data. Initialize uses it after loading from disk.
func (a *Advisor) Publish(items []catalog.Item, graph *questions.Graph) error {
	if graph == nil {
		return questions.ErrEmptyGraph
	}
	dangling, err := graph.Validate(a.cfg.RootQuestionID)
	if err != nil {
		return err
	}
	for _, d := range dangling {
		a.log.Warn("ADVISOR", "Answer points at a missing question", map[string]interface{}{"answer": d})
	}

	a.data.Store(&dataset{
		graph:       graph,
		catalog:     items,
		brandModels: catalog.BrandModelList(items),
		formatter:   formatter.New(items, a.cfg.Formatter),
		routes:      defaultRoutes(),
		root:        a.cfg.RootQuestionID,
	})

	a.log.Info("ADVISOR", "Advisor initialized", map[string]interface{}{
		"items":     len(items),
		"questions": graph.Len(),
		"root":      a.cfg.RootQuestionID,
	})
	return nil
}

func (a *Advisor) Ready() bool {
	return a.data.Load() != nil
}

func (a *Advisor) loaded() (*dataset, error) {
	ds := a.data.Load()
	if ds == nil {
		return nil, ErrNotInitialized
	}
	return ds, nil
}

// NewSession starts a conversation at the root question.
func (a *Advisor) NewSession(id, tag string, sinks ...history.Sink) (*Session, error) {
	ds, err := a.loaded()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:      id,
		Tag:     tag,
		current: ds.root,
		data:    ds,
		engine:  filter.NewEngine(ds.catalog),
		history: history.NewRecorder(a.log, sinks...),
		now:     time.Now,
	}, nil
}

// RestoreSession rebuilds a session from a snapshot by replaying its filters.
func (a *Advisor) RestoreSession(snap Snapshot, sinks ...history.Sink) (*Session, error) {
	s, err := a.NewSession(snap.ID, snap.Tag, sinks...)
	if err != nil {
		return nil, err
	}
	if snap.CurrentQuestionID != "" {
		s.current = snap.CurrentQuestionID
	}
	s.engine.Replay(snap.Filters)
	s.history.Restore(snap.History)
	return s, nil
}

// BrandModels lists "Brand Model" labels for the type-to-search step.
func (a *Advisor) BrandModels() ([]string, error) {
	ds, err := a.loaded()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ds.brandModels))
	copy(out, ds.brandModels)
	return out, nil
}
