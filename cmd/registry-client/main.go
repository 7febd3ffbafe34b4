package main

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/synbio-provenance-registry/api/auth"
	"github.com/ruteri/synbio-provenance-registry/api/clients"
	"github.com/ruteri/synbio-provenance-registry/interfaces"
	"github.com/urfave/cli/v2"
)

var flagServerAddr = &cli.StringFlag{
	Name:    "server-addr",
	Value:   "http://127.0.0.1:8080",
	Usage:   "registry server address",
	EnvVars: []string{"SYNBIO_SERVER_ADDR"},
}

var flagPrivateKey = &cli.StringFlag{
	Name:    "private-key",
	Usage:   "hex secp256k1 private key used to sign requests, omit for read-only calls",
	EnvVars: []string{"SYNBIO_PRIVATE_KEY"},
}

var flagTimeout = &cli.DurationFlag{
	Name:  "timeout",
	Value: 30 * time.Second,
	Usage: "request timeout",
}

var flagFile = &cli.StringFlag{
	Name:  "file",
	Usage: "read the sequence payload from a file instead of the argument",
}

func main() {
	app := &cli.App{
		Name:  "registry-client",
		Usage: "Call the synthetic biology provenance registries",
		Flags: []cli.Flag{
			flagServerAddr,
			flagPrivateKey,
			flagTimeout,
		},
		Commands: []*cli.Command{
			{
				Name:   "keygen",
				Usage:  "generate a new signing key and print it with its address",
				Action: keygen,
			},
			{
				Name:   "whoami",
				Usage:  "print the address of --private-key",
				Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
					p, err := c.Caller()
					if err != nil {
						return err
					}
					return printJSON(p)
				}),
			},
			verifierCommands,
			organismCommands,
			sequenceCommands,
			designCommands,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var verifierCommands = &cli.Command{
	Name:  "verifier",
	Usage: "manage and query the verifier set",
	Subcommands: []*cli.Command{
		{
			Name:      "add",
			Usage:     "add a verifier (administrator only)",
			ArgsUsage: "<address>",
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				p, err := principalArg(cCtx, 0)
				if err != nil {
					return err
				}
				return c.AddVerifier(cCtx.Context, p)
			}),
		},
		{
			Name:      "remove",
			Usage:     "remove a verifier (administrator only)",
			ArgsUsage: "<address>",
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				p, err := principalArg(cCtx, 0)
				if err != nil {
					return err
				}
				return c.RemoveVerifier(cCtx.Context, p)
			}),
		},
		{
			Name:      "check",
			Usage:     "report whether an address is a verifier",
			ArgsUsage: "<address>",
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				p, err := principalArg(cCtx, 0)
				if err != nil {
					return err
				}
				ok, err := c.IsVerifier(cCtx.Context, p)
				if err != nil {
					return err
				}
				return printJSON(ok)
			}),
		},
		{
			Name:  "list",
			Usage: "print the administrator and all verifiers",
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				res, err := c.ListVerifiers(cCtx.Context)
				if err != nil {
					return err
				}
				return printJSON(res)
			}),
		},
	},
}

var organismCommands = &cli.Command{
	Name:  "organism",
	Usage: "attest and query organisms",
	Subcommands: []*cli.Command{
		{
			Name:      "verify",
			Usage:     "attest an organism (verifiers only)",
			ArgsUsage: "<organism-id>",
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				id, err := idArg(cCtx, 0)
				if err != nil {
					return err
				}
				return c.VerifyOrganism(cCtx.Context, interfaces.OrganismID(id))
			}),
		},
		{
			Name:      "status",
			Usage:     "print the verification status of an organism",
			ArgsUsage: "<organism-id>",
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				id, err := idArg(cCtx, 0)
				if err != nil {
					return err
				}
				v, err := c.IsOrganismVerified(cCtx.Context, interfaces.OrganismID(id))
				if err != nil {
					return err
				}
				return printJSON(v)
			}),
		},
	},
}

var sequenceCommands = &cli.Command{
	Name:  "sequence",
	Usage: "register and manage gene sequences",
	Subcommands: []*cli.Command{
		{
			Name:      "register",
			Usage:     "register a sequence owned by the caller and print its id",
			ArgsUsage: "[payload]",
			Flags:     []cli.Flag{flagFile},
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				payload := cCtx.Args().First()
				if path := cCtx.String(flagFile.Name); path != "" {
					data, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("could not read sequence file: %w", err)
					}
					payload = strings.TrimSpace(string(data))
				}
				id, err := c.RegisterSequence(cCtx.Context, payload)
				if err != nil {
					return err
				}
				return printJSON(id)
			}),
		},
		{
			Name:      "license",
			Usage:     "mark a sequence as licensed (owner only)",
			ArgsUsage: "<sequence-id>",
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				id, err := idArg(cCtx, 0)
				if err != nil {
					return err
				}
				return c.LicenseSequence(cCtx.Context, interfaces.SequenceID(id))
			}),
		},
		{
			Name:      "transfer",
			Usage:     "transfer ownership of a sequence (owner only)",
			ArgsUsage: "<sequence-id> <new-owner>",
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				id, err := idArg(cCtx, 0)
				if err != nil {
					return err
				}
				owner, err := principalArg(cCtx, 1)
				if err != nil {
					return err
				}
				return c.TransferOwnership(cCtx.Context, interfaces.SequenceID(id), owner)
			}),
		},
		{
			Name:      "get",
			Usage:     "print a sequence, or null if it does not exist",
			ArgsUsage: "<sequence-id>",
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				id, err := idArg(cCtx, 0)
				if err != nil {
					return err
				}
				seq, found, err := c.GetSequence(cCtx.Context, interfaces.SequenceID(id))
				if err != nil {
					return err
				}
				if !found {
					return printJSON(nil)
				}
				return printJSON(seq)
			}),
		},
	},
}

var designCommands = &cli.Command{
	Name:  "design",
	Usage: "create and extend organism designs",
	Subcommands: []*cli.Command{
		{
			Name:      "create",
			Usage:     "create a design with the caller as creator and print its id",
			ArgsUsage: "<name> [description]",
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				if cCtx.NArg() < 1 {
					return errors.New("missing design name")
				}
				id, err := c.CreateDesign(cCtx.Context, cCtx.Args().Get(0), cCtx.Args().Get(1))
				if err != nil {
					return err
				}
				return printJSON(id)
			}),
		},
		{
			Name:      "add-contributor",
			Usage:     "add a contributor (creator only)",
			ArgsUsage: "<design-id> <address>",
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				id, err := idArg(cCtx, 0)
				if err != nil {
					return err
				}
				p, err := principalArg(cCtx, 1)
				if err != nil {
					return err
				}
				return c.AddContributor(cCtx.Context, interfaces.DesignID(id), p)
			}),
		},
		{
			Name:      "add-sequence",
			Usage:     "reference a sequence from a design (contributors only)",
			ArgsUsage: "<design-id> <sequence-id>",
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				id, err := idArg(cCtx, 0)
				if err != nil {
					return err
				}
				seq, err := idArg(cCtx, 1)
				if err != nil {
					return err
				}
				return c.AddGeneSequence(cCtx.Context, interfaces.DesignID(id), interfaces.SequenceID(seq))
			}),
		},
		{
			Name:      "get",
			Usage:     "print a design, or null if it does not exist",
			ArgsUsage: "<design-id>",
			Action: withClient(func(c *clients.RegistryClient, cCtx *cli.Context) error {
				id, err := idArg(cCtx, 0)
				if err != nil {
					return err
				}
				design, found, err := c.GetDesign(cCtx.Context, interfaces.DesignID(id))
				if err != nil {
					return err
				}
				if !found {
					return printJSON(nil)
				}
				return printJSON(design)
			}),
		},
	},
}

func keygen(cCtx *cli.Context) error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	return printJSON(struct {
		PrivateKey string               `json:"private_key"`
		Address    interfaces.Principal `json:"address"`
	}{
		PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
		Address:    auth.PrincipalOf(key),
	})
}

func withClient(action func(*clients.RegistryClient, *cli.Context) error) cli.ActionFunc {
	return func(cCtx *cli.Context) error {
		key, err := parsePrivateKey(cCtx.String(flagPrivateKey.Name))
		if err != nil {
			return err
		}
		c := clients.NewRegistryClient(cCtx.String(flagServerAddr.Name), key, cCtx.Duration(flagTimeout.Name))
		return action(c, cCtx)
	}
}

func parsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	if raw == "" {
		return nil, nil
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not parse private key: %w", err)
	}
	return key, nil
}

func principalArg(cCtx *cli.Context, n int) (interfaces.Principal, error) {
	raw := cCtx.Args().Get(n)
	if raw == "" {
		return interfaces.Principal{}, fmt.Errorf("missing address argument %d", n+1)
	}
	p, err := interfaces.NewPrincipalFromHex(raw)
	if err != nil {
		return interfaces.Principal{}, fmt.Errorf("could not parse address %q: %w", raw, err)
	}
	return p, nil
}

func idArg(cCtx *cli.Context, n int) (uint64, error) {
	raw := cCtx.Args().Get(n)
	if raw == "" {
		return 0, fmt.Errorf("missing id argument %d", n+1)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse id %q: %w", raw, err)
	}
	return id, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
