package worker

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"text2phenotype.com/hmmtag/pipeline"
	"text2phenotype.com/hmmtag/tasks"
)

type pipelineMock struct {
	ppln     pipeline.Pipeline
	fail     bool
	result   string
	requests []pipeline.Request
}

func newPipelineMock(fail bool, result string) *pipelineMock {
	mock := &pipelineMock{fail: fail, result: result}
	mock.ppln = func(request pipeline.Request) <-chan string {
		mock.requests = append(mock.requests, request)
		ch := make(chan string, 1)
		if !mock.fail {
			ch <- mock.result
		}
		close(ch)
		return ch
	}
	return mock
}

type redisMock struct {
	tagTask tasks.TagTask
	jobTask tasks.JobTask
	docTask tasks.DocumentTaskCached
	fail    map[string]bool
	calls   []string
}

func (mock *redisMock) call(name string) error {
	mock.calls = append(mock.calls, name)
	if mock.fail[name] {
		return errors.New("mock: " + name + " failed")
	}
	return nil
}

func (mock *redisMock) close() {}

func (mock *redisMock) getTagTask(redisKey string) (*tasks.TagTask, error) {
	if err := mock.call("getTagTask"); err != nil {
		return nil, err
	}
	task := mock.tagTask
	return &task, nil
}

func (mock *redisMock) getJobTask(task *Task) (*tasks.JobTask, error) {
	if err := mock.call("getJobTask"); err != nil {
		return nil, err
	}
	jobTask := mock.jobTask
	return &jobTask, nil
}

func (mock *redisMock) getDocTask(task *Task) (*tasks.DocumentTaskCached, error) {
	if err := mock.call("getDocTask"); err != nil {
		return nil, err
	}
	docTask := mock.docTask
	return &docTask, nil
}

func (mock *redisMock) onTaskStarted(task *Task) error {
	return mock.call("onTaskStarted")
}

func (mock *redisMock) onTaskCancelled(task *Task, errorMessages ...string) error {
	return mock.call("onTaskCancelled")
}

func (mock *redisMock) onTaskExceededRetries(task *Task, maxRetries int) error {
	return mock.call("onTaskExceededRetries")
}

func (mock *redisMock) onTaskFailedWithError(task *Task, err error) error {
	return mock.call("onTaskFailedWithError")
}

func (mock *redisMock) onTaskComplete(task *Task) error {
	return mock.call("onTaskComplete")
}

type rmqMock struct {
	fail     map[string]bool
	calls    []string
	messages []Message
}

func (mock *rmqMock) close() {}

func (mock *rmqMock) rejectDelivery(delivery *amqp.Delivery, hmmLogger *zerolog.Logger) {
	mock.calls = append(mock.calls, "rejectDelivery")
}

func (mock *rmqMock) getDeliveriesCh() <-chan amqp.Delivery {
	return nil
}

func (mock *rmqMock) getReqChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) getRespChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) pingSequencer(task *Task, message Message) error {
	mock.calls = append(mock.calls, "pingSequencer")
	mock.messages = append(mock.messages, message)
	if mock.fail["pingSequencer"] {
		return errors.New("mock: failed to ping sequencer")
	}
	return nil
}

func (mock *rmqMock) acknowledgeDelivery(delivery *amqp.Delivery) error {
	mock.calls = append(mock.calls, "acknowledgeDelivery")
	if mock.fail["acknowledgeDelivery"] {
		return errors.New("mock: failed to acknowledge delivery")
	}
	return nil
}

type s3Mock struct {
	input   []byte
	fail    map[string]bool
	calls   []string
	results map[string]string
}

func (mock *s3Mock) close() {}

func (mock *s3Mock) getInputData(task *Task) ([]byte, error) {
	mock.calls = append(mock.calls, "getInputData")
	if mock.fail["getInputData"] {
		return nil, errors.New("mock: failed to load from s3")
	}
	return mock.input, nil
}

func (mock *s3Mock) saveResultsFile(task *Task, result string) error {
	mock.calls = append(mock.calls, "saveResultsFile")
	if mock.fail["saveResultsFile"] {
		return errors.New("mock: failed to upload results")
	}
	if mock.results == nil {
		mock.results = make(map[string]string)
	}
	mock.results[resultsFileKey(task)] = result
	return nil
}

func (mock *pipelineMock) panicking() {
	mock.ppln = func(request pipeline.Request) <-chan string {
		mock.requests = append(mock.requests, request)
		panic("mock: pipeline panicked")
	}
}
