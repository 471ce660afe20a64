package scheduler

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Job — отложенное действие для одного чата.
type Job struct {
	ID     uuid.UUID
	ChatID int64
	At     time.Time
	fn     func()
	index  int
}

// Scheduler хранит не больше одной задачи на чат и проверяет сроки раз в tick.
// Фоновый цикл работает только пока есть задачи.
type Scheduler struct {
	mu      sync.Mutex
	queue   jobQueue
	byChat  map[int64]*Job
	tick    time.Duration
	now     func() time.Time
	running bool
	stopped bool
	stop    chan struct{}
	wg      sync.WaitGroup
	log     *zap.Logger
}

func New(tick time.Duration, log *zap.Logger) *Scheduler {
	if tick <= 0 {
		tick = time.Second
	}
	return &Scheduler{
		byChat: make(map[int64]*Job),
		tick:   tick,
		now:    time.Now,
		stop:   make(chan struct{}),
		log:    log,
	}
}

// Arm заменяет задачу чата новой и запускает цикл проверки, если он не работает.
func (s *Scheduler) Arm(chatID int64, at time.Time, fn func()) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		s.log.Warn("⚠️ Планировщик остановлен, задача не поставлена", zap.Int64("chat_id", chatID))
		return uuid.Nil
	}

	if old, ok := s.byChat[chatID]; ok {
		heap.Remove(&s.queue, old.index)
		delete(s.byChat, chatID)
		s.log.Info("Предыдущая задача чата снята", zap.Int64("chat_id", chatID), zap.Stringer("job_id", old.ID))
	}

	job := &Job{ID: uuid.New(), ChatID: chatID, At: at, fn: fn}
	heap.Push(&s.queue, job)
	s.byChat[chatID] = job
	s.log.Info("⏰ Подведение итогов запланировано",
		zap.Int64("chat_id", chatID),
		zap.Stringer("job_id", job.ID),
		zap.Time("at", at.UTC()))

	if !s.running {
		s.running = true
		s.wg.Add(1)
		go s.run()
	}
	return job.ID
}

// Cancel снимает задачу чата. Если задачи нет, ничего не делает.
func (s *Scheduler) Cancel(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.byChat[chatID]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, job.index)
	delete(s.byChat, chatID)
	s.log.Info("Задача снята", zap.Int64("chat_id", chatID), zap.Stringer("job_id", job.ID))
	return true
}

// CancelAll снимает все задачи.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = nil
	s.byChat = make(map[int64]*Job)
}

// Pending — сколько задач ждёт выполнения.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Next — на когда назначена задача чата.
func (s *Scheduler) Next(chatID int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.byChat[chatID]
	if !ok {
		return time.Time{}, false
	}
	return job.At, true
}

// Running — работает ли фоновый цикл.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Tick выполняет все задачи, срок которых наступил. Задачи выполняются вне блокировки,
// поэтому могут сами ставить и снимать задачи.
func (s *Scheduler) Tick() int {
	now := s.now()

	s.mu.Lock()
	var due []*Job
	for len(s.queue) > 0 && !s.queue[0].At.After(now) {
		job := heap.Pop(&s.queue).(*Job)
		delete(s.byChat, job.ChatID)
		due = append(due, job)
	}
	s.mu.Unlock()

	for _, job := range due {
		s.exec(job)
	}
	return len(due)
}

// Stop останавливает цикл и сбрасывает все задачи. Повторный вызов безопасен.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.queue = nil
	s.byChat = make(map[int64]*Job)
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("Планировщик остановлен")
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	s.log.Debug("Цикл проверки отложенных задач запущен")

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		case <-ticker.C:
			s.Tick()
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.running = false
				s.mu.Unlock()
				s.log.Debug("Цикл проверки отложенных задач завершён")
				return
			}
			s.mu.Unlock()
		}
	}
}

func (s *Scheduler) exec(job *Job) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("❌ Паника в отложенной задаче",
				zap.Int64("chat_id", job.ChatID),
				zap.Stringer("job_id", job.ID),
				zap.Any("panic", r))
		}
	}()
	s.log.Info("▶️ Выполняется отложенная задача", zap.Int64("chat_id", job.ChatID), zap.Stringer("job_id", job.ID))
	job.fn()
}

// jobQueue — куча задач по времени срабатывания.
type jobQueue []*Job

func (q jobQueue) Len() int { return len(q) }

func (q jobQueue) Less(i, j int) bool { return q[i].At.Before(q[j].At) }

func (q jobQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *jobQueue) Push(x any) {
	job := x.(*Job)
	job.index = len(*q)
	*q = append(*q, job)
}

func (q *jobQueue) Pop() any {
	old := *q
	n := len(old)
	job := old[n-1]
	old[n-1] = nil
	job.index = -1
	*q = old[:n-1]
	return job
}
