package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/thxssio/ndiptz/libndi"
	"github.com/thxssio/ndiptz/session"
)

const discoverTimeout = 5 * time.Second

func main() {
	var applicationContext context.Context
	var cancel context.CancelFunc

	var rootCmd = &cobra.Command{
		Use:   "ndiptz",
		Short: "ndiptz connects to the first NDI source on the network and recalls PTZ preset #3 on every status change",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			controller := session.New(libndi.NewLibrary(), os.Stdout, log.New(os.Stderr, "", log.LstdFlags))
			// Every run path exits with status 0.
			_ = controller.Run(applicationContext)
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			signalChannel := make(chan os.Signal, 1)
			signal.Notify(signalChannel, os.Interrupt)
			applicationContext, cancel = context.WithCancel(context.Background())
			go func(cancel context.CancelFunc) {
				<-signalChannel
				cancel()
			}(cancel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			cancel()
		},
		Version: "0.1.0",
	}

	var discover = &cobra.Command{
		Use:   "discover",
		Short: "List NDI sources announced over mDNS",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			sources, err := libndi.BrowseSources(applicationContext, discoverTimeout)
			if err != nil {
				log.Printf("ERROR discovering sources: %s\n", err)
				return
			}
			if len(sources) == 0 {
				log.Printf("No sources found\n")
				return
			}

			for _, source := range sources {
				fmt.Printf("%s\t%s\n", source.Name, source.URLAddress)
			}
		},
	}

	rootCmd.AddCommand(discover)

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
