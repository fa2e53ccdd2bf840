package worker

import (
	"fmt"
	"time"

	"text2phenotype.com/hmmtag/tasks"
)

type redisTransactions interface {
	getTagTask(redisKey string) (*tasks.TagTask, error)
	getJobTask(task *Task) (*tasks.JobTask, error)
	getDocTask(task *Task) (*tasks.DocumentTaskCached, error)
	onTaskStarted(task *Task) error
	onTaskCancelled(task *Task, errorMessages ...string) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) updateInfo(task *Task, update func(info *tasks.TagTaskInfo)) error {
	return wrapper.tasksClient.Tags.Update(task.redisKey, func(tagTask *tasks.TagTask) {
		update(&tagTask.TaskStatuses.HMMTagger)
	})
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	return wrapper.updateInfo(task, markStarted)
}

func (wrapper *redisClientWrapper) onTaskCancelled(task *Task, errorMessages ...string) error {
	return wrapper.updateInfo(task, func(info *tasks.TagTaskInfo) {
		markFinished(info, tasks.TaskStatusCanceled, errorMessages...)
	})
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	err := wrapper.tasksClient.Documents.Update(task.tagTask.DocID, func(docTask *tasks.DocumentTask) {
		docTask.FailedTasks = append(docTask.FailedTasks, tasks.TaskName)
		docTask.FailedChunks[task.redisKey] = append(docTask.FailedChunks[task.redisKey], tasks.TaskName)
	})
	if err != nil {
		return err
	}
	return wrapper.updateInfo(task, func(info *tasks.TagTaskInfo) {
		markFinished(info, tasks.TaskStatusCompletedFailure, fmt.Sprintf(
			"Task has exceeded retries. (Attempts: %d, max retries: %d )",
			info.Attempts+1,
			maxRetries,
		))
	})
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.updateInfo(task, func(info *tasks.TagTaskInfo) {
		markFailed(info, err)
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	key := resultsFileKey(task)
	return wrapper.updateInfo(task, func(info *tasks.TagTaskInfo) {
		markComplete(info, key)
	})
}

func (wrapper *redisClientWrapper) getTagTask(redisKey string) (*tasks.TagTask, error) {
	return wrapper.tasksClient.Tags.Get(redisKey)
}

func (wrapper *redisClientWrapper) getJobTask(task *Task) (*tasks.JobTask, error) {
	return wrapper.tasksClient.Jobs.GetCached(task.tagTask.JobID)
}

func (wrapper *redisClientWrapper) getDocTask(task *Task) (*tasks.DocumentTaskCached, error) {
	return wrapper.tasksClient.Documents.GetCached(task.tagTask.DocID)
}

func markStarted(info *tasks.TagTaskInfo) {
	info.Status = tasks.TaskStatusStarted
	info.Attempts++
	info.StartedAt = timestamp()
	info.CompletedAt = nil
}

// markFinished records a terminal state reached without running the pipeline; it still counts as an attempt.
func markFinished(info *tasks.TagTaskInfo, status tasks.TaskStatus, errorMessages ...string) {
	now := timestamp()
	info.Status = status
	info.StartedAt = now
	info.CompletedAt = now
	info.Attempts++
	info.ErrorMessages = append(info.ErrorMessages, errorMessages...)
}

func markFailed(info *tasks.TagTaskInfo, err error) {
	info.Status = tasks.TaskStatusFailed
	info.CompletedAt = timestamp()
	info.ErrorMessages = append(info.ErrorMessages, err.Error())
}

func markComplete(info *tasks.TagTaskInfo, key string) {
	if !info.Status.Complete() {
		info.Status = tasks.TaskStatusCompletedSuccess
	}
	info.CompletedAt = timestamp()
	info.ResultsFileKey = key
}

const RFC3339Micro = "2006-01-02T15:04:05.000000-07:00"

func timestamp() *string {
	now := time.Now().UTC().Format(RFC3339Micro)
	return &now
}
