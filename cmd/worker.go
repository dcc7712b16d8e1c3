package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vibast-solutions/ms-go-users/app/mail"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the mail delivery worker",
	Long:  `Consume queued mail tasks, render them and deliver them over SMTP.`,
	Run:   runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer, err := mail.NewRenderer()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load mail templates")
	}

	handler := mail.NewHandler(renderer, mail.NewSender(cfg.Mail), cfg.Mail.From)
	worker := mail.NewWorker(redisClientOpt(cfg), cfg.Mail.Queue, cfg.Mail.Concurrency, handler)

	logrus.WithFields(logrus.Fields{
		"queue":       cfg.Mail.Queue,
		"concurrency": cfg.Mail.Concurrency,
	}).Info("Starting mail worker")
	if err := worker.Start(); err != nil {
		logrus.WithError(err).Fatal("Failed to start mail worker")
	}

	<-ctx.Done()
	logrus.Info("Shutting down mail worker")
	worker.Shutdown()
}
