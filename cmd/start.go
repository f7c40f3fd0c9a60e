package cmd

import (
	"accounts/domain"
	"accounts/interface/api"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the accounts service",
	Long:  `Starts the HTTP API and the delivery of outbound messages. Stop it with SIGINT or SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("start called.")

		defaultDependencyInject()

		server := &http.Server{
			Addr:              domain.GetListenAddress(),
			Handler:           api.NewRouter(api.NewHandler(accountsInteractor), registry),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Printf("listening on %v\n", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("🔴 serving api - %v\n", err.Error())
			}
		}()

		deliverTicker := schedule(deliver, domain.GetDeliverInterval(), quit)

		signal.Ignore()
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		s := <-stop
		log.Printf("Got signal '%v', stopping", s)

		deliverTicker.Stop()
		close(quit)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
		if dbPool != nil {
			dbPool.Close()
		}
	},
}

func schedule(task func(), interval time.Duration, done chan bool) *time.Ticker {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {

			case <-ticker.C:
				ticker.Stop()
				task()
				ticker.Reset(interval)

			case <-done:
				return
			}
		}
	}()
	return ticker
}

func deliver() {
	ctx, cancel := context.WithTimeout(context.Background(), domain.GetDeliverInterval()*10)
	defer cancel()

	sent, err := messengerInteractor.Deliver(ctx)
	if err != nil {
		log.Printf("❌ Failed to deliver outbound messages - %v\n", err.Error())
		return
	}
	if sent > 0 {
		log.Printf("%v outbound messages delivered\n", sent)
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
}
