package worker

import (
	"path"

	"text2phenotype.com/hmmtag/s3client"
)

const resultsFileSuffix = ".hmm_tags.json"

type s3Transactions interface {
	saveResultsFile(task *Task, result string) error
	getInputData(task *Task) ([]byte, error)
	close()
}

type s3ClientWrapper struct {
	s3Client *s3client.Client
}

func (wrapper *s3ClientWrapper) close() {
	wrapper.s3Client.Close()
}

func (wrapper *s3ClientWrapper) saveResultsFile(task *Task, result string) error {
	_, err := wrapper.s3Client.Upload(result, resultsFileKey(task))
	return err
}

func (wrapper *s3ClientWrapper) getInputData(task *Task) ([]byte, error) {
	return wrapper.s3Client.Download(task.tagTask.InputFileKey)
}

// resultsFileKey places the tags next to the other chunk outputs of the document.
func resultsFileKey(task *Task) string {
	return path.Join("processed", "documents", task.tagTask.DocID, "chunks", task.redisKey, task.redisKey+resultsFileSuffix)
}
