package services

import (
	"context"
	"sync"

	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
)

// Worker runs analyses on a fixed number of goroutines, bounding concurrent
// model inference.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	Submit(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalysisReport, error)
}

type analysisJob struct {
	ctx    context.Context
	req    *models.AnalyzeRequest
	result chan analysisResult
}

type analysisResult struct {
	report *models.AnalysisReport
	err    error
}

type worker struct {
	analyzer    AnalyzerService
	jobQueue    chan analysisJob
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	done        chan struct{}
	stopOnce    sync.Once
}

func NewWorker(analyzer AnalyzerService, concurrency, queueSize int) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &worker{
		analyzer:    analyzer,
		jobQueue:    make(chan analysisJob, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	logger.Info().Int("concurrency", w.concurrency).Msg("🚀 Starting analysis workers")

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements Worker. Queued jobs that were not picked up fail with
// ErrWorkerStopped.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		logger.Info().Msg("🛑 Stopping analysis workers...")
		close(w.stopChan)
		w.wg.Wait()
		w.drain()
		close(w.done)
		logger.Info().Msg("✅ Analysis workers stopped")
	})
}

// Submit implements Worker. It blocks until the analysis finishes, ctx is done
// or the worker stops.
func (w *worker) Submit(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalysisReport, error) {
	job := analysisJob{
		ctx:    ctx,
		req:    req,
		result: make(chan analysisResult, 1),
	}

	select {
	case <-w.stopChan:
		return nil, ErrWorkerStopped
	default:
	}

	select {
	case w.jobQueue <- job:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.stopChan:
		return nil, ErrWorkerStopped
	}

	select {
	case res := <-job.result:
		return res.report, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.done:
		select {
		case res := <-job.result:
			return res.report, res.err
		default:
			return nil, ErrWorkerStopped
		}
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			logger.Debug().Int("worker", workerID).Msg("👷 Worker stopped")
			return
		case <-ctx.Done():
			return
		case job := <-w.jobQueue:
			w.run(job, workerID)
		}
	}
}

func (w *worker) run(job analysisJob, workerID int) {
	if err := job.ctx.Err(); err != nil {
		job.result <- analysisResult{err: err}
		return
	}

	report, err := w.analyzer.Analyze(job.ctx, job.req)
	if err != nil {
		logger.Ctx(job.ctx).Error().Err(err).Int("worker", workerID).Msg("❌ Analysis failed")
	}
	job.result <- analysisResult{report: report, err: err}
}

func (w *worker) drain() {
	for {
		select {
		case job := <-w.jobQueue:
			job.result <- analysisResult{err: ErrWorkerStopped}
		default:
			return
		}
	}
}
