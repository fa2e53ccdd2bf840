package tasks

import (
	"text2phenotype.com/hmmtag/redis"
)

const TagTasksDB redis.DB = 2

// TaskName identifies this worker in task statuses and document failure lists.
const TaskName = "hmm_tagger"

type TaskStatus string

const (
	TaskStatusProcessing       TaskStatus = "processing"
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure || s == TaskStatusCanceled
}

func (s TaskStatus) Submitted() bool {
	return s == TaskStatusSubmitted || s == TaskStatusStarted || s == TaskStatusProcessing
}

// TagTask asks for the token stream stored at InputFileKey to be tagged with Configs
// (every loaded configuration when empty).
type TagTask struct {
	DocID        string          `json:"document_id"`
	JobID        string          `json:"job_id"`
	InputFileKey string          `json:"input_file_key"`
	Configs      []string        `json:"configs"`
	TaskStatuses TagTaskStatuses `json:"task_statuses"`
}

type TagTaskStatuses struct {
	HMMTagger TagTaskInfo `json:"hmm_tagger"`
}

type TagTaskInfo struct {
	ResultsFileKey string     `json:"results_file_key"`
	StartedAt      *string    `json:"started_at"`
	CompletedAt    *string    `json:"completed_at"`
	Attempts       int        `json:"attempts"`
	Status         TaskStatus `json:"status"`
	Dependencies   []string   `json:"dependencies"`
	ErrorMessages  []string   `json:"error_messages"`
}

type TagTasks struct {
	client redis.Client
}

func (tasks TagTasks) Get(redisKey string) (*TagTask, error) {
	var task TagTask
	err := tasks.client.GetDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks TagTasks) Update(redisKey string, updateFunc func(task *TagTask)) error {
	var task TagTask
	return tasks.client.UpdateDocument(redisKey, &task, func() {
		updateFunc(&task)
	})
}
