package main

import (
	"context"
	"encoding/json"
	"fmt"
	"game-lottery/client"
	"game-lottery/server/constant"
	"game-lottery/server/service"
	"game-lottery/server/utils"
	"github.com/redis/go-redis/v9"
	"gopkg.in/urfave/cli.v1"
	"os"
	"os/signal"
	"strconv"
	"syscall"
)

func main() {
	app := cli.NewApp()
	app.Name = "lottery-cli"
	app.Usage = "talk to a lottery server"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "server, s",
			Value:  "http://127.0.0.1:8080",
			Usage:  "lottery server URL",
			EnvVar: "LOTTERY_SERVER",
		},
		cli.StringFlag{
			Name:   "token, t",
			Usage:  "JWT returned by login",
			EnvVar: "LOTTERY_TOKEN",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "register",
			Usage:     "create an account",
			ArgsUsage: "passphrase",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return cli.NewExitError("passphrase required", 1)
				}
				account, err := newClient(c).Register(context.Background(), c.Args().First())
				if err != nil {
					return err
				}
				return printJSON(account)
			},
		},
		{
			Name:      "login",
			Usage:     "log in and print a token",
			ArgsUsage: "address passphrase",
			Action: func(c *cli.Context) error {
				if c.NArg() != 2 {
					return cli.NewExitError("address and passphrase required", 1)
				}
				account, err := newClient(c).Login(context.Background(), c.Args().Get(0), c.Args().Get(1))
				if err != nil {
					return err
				}
				fmt.Println(account.Token)
				return nil
			},
		},
		{
			Name:  "account",
			Usage: "show the logged in account",
			Action: func(c *cli.Context) error {
				account, err := newClient(c).Account(context.Background())
				if err != nil {
					return err
				}
				fmt.Printf("%s %s ether\n", account.Address, utils.FromWei(account.Balance))
				return nil
			},
		},
		{
			Name:  "receive",
			Usage: "claim the faucet",
			Action: func(c *cli.Context) error {
				account, err := newClient(c).Receive(context.Background())
				if err != nil {
					return err
				}
				fmt.Printf("%s %s ether\n", account.Address, utils.FromWei(account.Balance))
				return nil
			},
		},
		{
			Name:      "participate",
			Usage:     "enter the current round",
			ArgsUsage: "ether",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return cli.NewExitError("amount in ether required", 1)
				}
				value, err := utils.ToWei(c.Args().First())
				if err != nil {
					return cli.NewExitError(err.Error(), 1)
				}
				return newClient(c).Participate(context.Background(), value)
			},
		},
		{
			Name:  "pick-winner",
			Usage: "draw the winner (organizer only)",
			Action: func(c *cli.Context) error {
				winner, err := newClient(c).PickWinner(context.Background())
				if err != nil {
					return err
				}
				fmt.Println(winner)
				return nil
			},
		},
		{
			Name:      "can-participate",
			Usage:     "check whether an address may enter",
			ArgsUsage: "address",
			Action: func(c *cli.Context) error {
				ok, err := newClient(c).CanParticipate(context.Background(), c.Args().First())
				if err != nil {
					return err
				}
				fmt.Println(ok)
				return nil
			},
		},
		{
			Name:  "participators",
			Usage: "list the participants of the current round",
			Action: func(c *cli.Context) error {
				participators, err := newClient(c).Participators(context.Background())
				if err != nil {
					return err
				}
				for i, address := range participators {
					fmt.Printf("%d %s\n", i+1, address)
				}
				return nil
			},
		},
		{
			Name:      "participator",
			Usage:     "show the n-th participant, counting from 1",
			ArgsUsage: "n",
			Action: func(c *cli.Context) error {
				n, err := strconv.Atoi(c.Args().First())
				if err != nil {
					return cli.NewExitError("index must be a number", 1)
				}
				address, err := newClient(c).ParticipatorAddress(context.Background(), n)
				if err != nil {
					return err
				}
				fmt.Println(address)
				return nil
			},
		},
		{
			Name:  "state",
			Usage: "show round, organizer, balance and participant count",
			Action: func(c *cli.Context) error {
				state, err := newClient(c).State(context.Background())
				if err != nil {
					return err
				}
				printState(state)
				return nil
			},
		},
		{
			Name:  "history",
			Usage: "list completed rounds",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "limit", Value: 10},
			},
			Action: func(c *cli.Context) error {
				rounds, err := newClient(c).History(context.Background(), c.Int("limit"))
				if err != nil {
					return err
				}
				for _, r := range rounds {
					fmt.Printf("round %d: %s won %s ether from %d participants\n",
						r.RoundNumber, r.Winner, utils.FromWei(r.WinAmount), r.ParticipantCount)
				}
				return nil
			},
		},
		{
			Name:  "watch",
			Usage: "print the state every time it changes",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "redis", Usage: "follow the redis relay at host:port instead of the websocket"},
				cli.StringFlag{Name: "channel", Value: constant.RedisEventChannel},
			},
			Action: watch,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient(c *cli.Context) *client.Client {
	lottery := client.New(c.GlobalString("server"))
	lottery.SetToken(c.GlobalString("token"))
	return lottery
}

func watch(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := c.String("redis"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		err := client.WatchRedis(ctx, rdb, c.String("channel"), printEvent)
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	err := newClient(c).Watch(ctx, func(state service.RoundState, ev service.Event) {
		if ev != nil {
			printEvent(ev)
		}
		printState(state)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func printEvent(ev service.Event) {
	switch e := ev.(type) {
	case service.NewParticipation:
		fmt.Printf("NewParticipation %s %s ether\n", e.ParticipantAddress, utils.FromWei(e.ParticipationValue))
	case service.WinnerPicked:
		fmt.Printf("WinnerPicked %s\n", e.WinnerAddress)
	}
}

func printState(state service.RoundState) {
	fmt.Printf("round %d organizer %s balance %s ether participants %d\n",
		state.RoundNumber, state.Organizer, utils.FromWei(state.Balance), len(state.Participants))
}

func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
