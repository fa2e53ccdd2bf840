package tasks

import (
	"fmt"

	"text2phenotype.com/hmmtag/redis"
)

const JobsDB redis.DB = 1

type JobTask struct {
	UserCanceled           bool `json:"user_canceled"`
	StopDocumentsOnFailure bool `json:"stop_documents_on_failure"`
}

type JobTasks struct {
	client redis.Client
}

func (tasks JobTasks) GetCached(redisKey string) (*JobTask, error) {
	var task JobTask
	if err := tasks.client.GetDocument(cachedPropertiesKey(redisKey), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Client bundles the task stores of the three Redis databases the tagger reads and writes.
type Client struct {
	Documents DocumentTasks
	Tags      TagTasks
	Jobs      JobTasks
}

// NewClient connects to every task database. Connections opened before a failure are closed again.
func NewClient() (Client, error) {
	var opened []redis.Client
	connect := func(db redis.DB) (redis.Client, error) {
		client, err := redis.NewClient(db)
		if err != nil {
			for _, c := range opened {
				_ = c.Close()
			}
			return redis.Client{}, fmt.Errorf("redis db %d: %w", db, err)
		}
		opened = append(opened, client)
		return client, nil
	}

	docs, err := connect(DocumentsDB)
	if err != nil {
		return Client{}, err
	}
	jobs, err := connect(JobsDB)
	if err != nil {
		return Client{}, err
	}
	tags, err := connect(TagTasksDB)
	if err != nil {
		return Client{}, err
	}
	return Client{
		Documents: DocumentTasks{client: docs},
		Jobs:      JobTasks{client: jobs},
		Tags:      TagTasks{client: tags},
	}, nil
}

func (client *Client) Close() {
	_ = client.Tags.client.Close()
	_ = client.Documents.client.Close()
	_ = client.Jobs.client.Close()
}

func cachedPropertiesKey(redisKey string) string {
	return fmt.Sprintf("%s-cached-properties", redisKey)
}
