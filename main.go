package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/inboxsweep/inboxsweep/config"
	"github.com/inboxsweep/inboxsweep/server"
)

func main() {
	app := &cli.App{
		Name:  "inboxsweep",
		Usage: "bulk mailbox cleanup with streamed progress and undo",
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the application server",
				Action: func(c *cli.Context) error {
					cfg, err := config.InitConfig()
					if err != nil {
						return err
					}

					log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
					log.Println("InboxSweep starting up...")

					srv, err := server.NewServer(cfg)
					if err != nil {
						return err
					}

					if err := srv.Run(); err != nil {
						return err
					}

					log.Println("Shutdown complete")
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("inboxsweep: %v", err)
	}
}
