// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

type Job struct {
	Id       int64
	Execute  time.Time
	Interval time.Duration
	Callback func()
	index    int
}

type jobQueue []*Job

func (q jobQueue) Len() int { return len(q) }

func (q jobQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q jobQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *jobQueue) Push(x interface{}) {
	n := len(*q)
	job := x.(*Job)
	job.index = n
	*q = append(*q, job)
}

func (q *jobQueue) Pop() interface{} {
	old := *q
	n := len(old)
	job := old[n-1]
	job.index = -1
	*q = old[0 : n-1]
	return job
}

// Scheduler runs delayed and recurring jobs off a single polling goroutine.
type Scheduler struct {
	queue   jobQueue
	mutex   sync.Mutex
	nextId  int64
	trigger chan *Job
	done    chan struct{}
}

func NewScheduler() *Scheduler {
	s := &Scheduler{
		queue:   make(jobQueue, 0),
		trigger: make(chan *Job, 1000),
		nextId:  1,
		done:    make(chan struct{}),
	}
	heap.Init(&s.queue)
	go s.process()
	return s
}

// AddJob schedules a callback after delay. A positive interval makes the
// job recurring until removed.
func (s *Scheduler) AddJob(delay time.Duration, interval time.Duration, callback func()) int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job := &Job{
		Id:       s.nextId,
		Execute:  time.Now().Add(delay),
		Interval: interval,
		Callback: callback,
	}
	s.nextId++

	heap.Push(&s.queue, job)
	return job.Id
}

func (s *Scheduler) RemoveJob(jobId int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, job := range s.queue {
		if job.Id == jobId {
			heap.Remove(&s.queue, i)
			break
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) process() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mutex.Lock()
			now := time.Now()

			for s.queue.Len() > 0 {
				job := s.queue[0]
				if job.Execute.After(now) {
					break
				}

				heap.Pop(&s.queue)
				s.trigger <- job

				if job.Interval > 0 {
					job.Execute = now.Add(job.Interval)
					heap.Push(&s.queue, job)
				}
			}
			s.mutex.Unlock()

		case job := <-s.trigger:
			if job.Callback != nil {
				job.Callback()
			}

		case <-s.done:
			return
		}
	}
}
