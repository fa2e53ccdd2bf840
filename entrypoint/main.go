package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"text2phenotype.com/hmmtag/api"
	"text2phenotype.com/hmmtag/logger"
	"text2phenotype.com/hmmtag/pipeline"
	"text2phenotype.com/hmmtag/redis"
	"text2phenotype.com/hmmtag/s3client"
	"text2phenotype.com/hmmtag/types"
	"text2phenotype.com/hmmtag/worker"
)

type Config struct {
	ConfigPath     string        `envconfig:"HMMTAG_CONFIG_PATH" required:"true"`
	RestAPIActive  bool          `envconfig:"HMMTAG_REST_API_ACTIVE" default:"false"`
	RestAPIPort    string        `envconfig:"HMMTAG_REST_API_PORT" default:"10000"`
	WorkerActive   bool          `envconfig:"HMMTAG_WORKER_ACTIVE" default:"true"`
	TagCacheActive bool          `envconfig:"HMMTAG_TAG_CACHE_ACTIVE" default:"false"`
	TagCacheTTL    time.Duration `envconfig:"HMMTAG_TAG_CACHE_TTL" default:"24h"`
}

const pipelineStartMaxRetries = 5

func main() {
	logger.SetupLogging()
	hmmLogger := logger.NewLogger("Main")
	fatalErrLogger := hmmLogger.Fatal().Caller()

	corpus := flag.String("train", "", "count a tagged corpus (TOKEN<TAB>TAG per line) and save the parameter files")
	out := flag.String("out", "", "path prefix of the parameter files written by -train")
	compact := flag.Bool("compact", false, "omit n-gram tags shared with the previous line")
	upload := flag.String("upload", "", "S3 key prefix to upload the trained parameter files to")
	boundary := flag.String("boundary", types.DefaultBoundaryTag, "sentence boundary tag used by -train")
	check := flag.Bool("check", false, "compile every configuration and exit")
	flag.Parse()

	if *corpus != "" {
		err := train(trainParams{
			Corpus:   *corpus,
			Out:      *out,
			Boundary: *boundary,
			Compact:  *compact,
			Upload:   *upload,
		}, hmmLogger)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Training failed")
			os.Exit(1)
		}
		return
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}

	if *check {
		cfgs, err := types.LoadConfigurations(config.ConfigPath)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Failed to load configurations")
			os.Exit(1)
		}
		fetcher, err := modelFetcher(cfgs)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Could not create S3 client")
			os.Exit(1)
		}
		if failed := checkConfigurations(cfgs, fetcher, hmmLogger); failed > 0 {
			fatalErrLogger.Int("failed", failed).Msg("Some configurations do not compile")
			os.Exit(1)
		}
		hmmLogger.Info().Int("configurations", len(cfgs)).Msg("All configurations compile. Exit...")
		return
	}

	var cache pipeline.SentenceCache
	if config.TagCacheActive {
		client, err := redis.NewClient(redis.TagCacheDB)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Could not create tag cache client")
			os.Exit(1)
		}
		tagCache := redis.NewTagCache(client, config.TagCacheTTL)
		defer tagCache.Close()
		cache = tagCache
	}

	//Load Pipeline
	type loaded struct {
		ppln    pipeline.Pipeline
		configs []string
	}
	pipelineChannel := make(chan loaded)
	go func() {
		for retry := 0; retry < pipelineStartMaxRetries; retry++ {
			cfgs, err := types.LoadConfigurations(config.ConfigPath)
			if err != nil {
				hmmLogger.Err(err).Msg("Failed to load configurations. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			hmmLogger.Info().Msgf("Loaded %d configurations", len(cfgs))
			hmmLogger.Info().Msg("Starting models loading")

			fetcher, err := modelFetcher(cfgs)
			if err != nil {
				hmmLogger.Err(err).Msg("Could not create S3 client. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			ppln, err := pipeline.Tagging(pipeline.TaggingParams{Configurations: cfgs}, fetcher, cache)
			if err != nil {
				hmmLogger.Err(err).Msg("Failed to start tagging pipeline. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			names := make([]string, len(cfgs))
			for i, cfg := range cfgs {
				names[i] = cfg.Name
			}
			hmmLogger.Info().Strs("configs", names).Msg("Models loaded")
			pipelineChannel <- loaded{ppln: ppln, configs: names}
			return
		}
		fatalErrLogger.Msg("Could not start pipeline after 5 retries, exiting")
		os.Exit(1)
	}()

	// block until models load
	res := <-pipelineChannel

	if config.RestAPIActive {
		serveAPI := func() {
			hmmLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Pipeline: res.ppln,
				Configs:  res.configs,
			}
			http.HandleFunc("/tag", apiRequest.ProcessData)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			hmmLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
		}
		if !config.WorkerActive {
			serveAPI()
			return
		}
		go serveAPI()
	}

	if !config.WorkerActive {
		hmmLogger.Info().Msg("Neither the worker nor the REST API is active. Exit...")
		return
	}

	hmmLogger.Info().Msg("Start HMM Tagging Worker")
	for {
		rmqWorker, err := worker.New(res.ppln)
		if err != nil {
			hmmLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			hmmLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}

// modelFetcher connects to S3 only when some configuration keeps its model there.
func modelFetcher(cfgs []types.Configuration) (pipeline.ModelFetcher, error) {
	for _, cfg := range cfgs {
		if cfg.Model.Source == types.ModelSourceS3 {
			client, err := s3client.New()
			if err != nil {
				return nil, err
			}
			return client, nil
		}
	}
	return nil, nil
}
