// Command scnpack decodes and re-encodes the scenario archive (sn.bin) of
// the Cross Channel family of visual novels: LZSS (de)compression, script
// parsing/emission, the editable YAML form, and the translator-facing TL
// document workflow, all behind one urfave/cli/v2 binary, in the same
// command-table shape as the teacher tool this repository is built from.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	cli "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"scnpack"
	"scnpack/archive"
	"scnpack/editable"
	"scnpack/tldoc"
)

func quirksFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "quirks",
		Usage: "comma list from {ccfc, psp, xbox, xbox-root2, sg, sg2, phantom, lp}",
	}
}

func resolveQuirks(c *cli.Context) (scnpack.Quirks, error) {
	q, err := scnpack.ParseQuirks(c.String("quirks"))
	if err != nil {
		return 0, cli.Exit(err, 1)
	}
	return q, nil
}

func main() {
	app := &cli.App{
		Name:  "scnpack",
		Usage: "decode, edit, and re-encode the Cross Channel scenario archive",
		Action: func(c *cli.Context) error {
			cli.ShowAppHelp(c)
			return nil
		},
		Commands: []*cli.Command{
			decompCommand(),
			recompCommand(),
			mkUncompbinCommand(),
			decodeCommand(),
			encodeCommand(),
			unpackCommand(),
			packCommand(),
			transformCommand(),
			untransformCommand(),
			fixCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func decompCommand() *cli.Command {
	return &cli.Command{
		Name:      "decomp",
		Usage:     "LZSS-decompress a raw archive",
		ArgsUsage: "in out",
		Action: func(c *cli.Context) error {
			return withTwoFiles(c, func(data []byte) ([]byte, error) {
				return archive.Decompress(data)
			})
		},
	}
}

func recompCommand() *cli.Command {
	return &cli.Command{
		Name:      "recomp",
		Usage:     "LZSS-compress a raw archive",
		ArgsUsage: "in out",
		Action: func(c *cli.Context) error {
			return withTwoFiles(c, func(data []byte) ([]byte, error) {
				return archive.Compress(data), nil
			})
		},
	}
}

func mkUncompbinCommand() *cli.Command {
	return &cli.Command{
		Name:      "mk-uncompbin",
		Usage:     "alias for decomp, retained for workflow compatibility",
		ArgsUsage: "in out",
		Action: func(c *cli.Context) error {
			return withTwoFiles(c, func(data []byte) ([]byte, error) {
				return archive.Decompress(data)
			})
		},
	}
}

func withTwoFiles(c *cli.Context, transform func([]byte) ([]byte, error)) error {
	if c.Args().Len() < 2 {
		return cli.Exit("Insufficient arguments", 1)
	}
	data, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return cli.Exit(err, 1)
	}
	out, err := transform(data)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := os.WriteFile(c.Args().Get(1), out, 0644); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "parse one script file into its editable YAML form",
		ArgsUsage: "in outdir",
		Flags:     []cli.Flag{quirksFlag()},
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 2 {
				return cli.Exit("Insufficient arguments", 1)
			}
			quirks, err := resolveQuirks(c)
			if err != nil {
				return err
			}
			in := c.Args().Get(0)
			data, err := os.ReadFile(in)
			if err != nil {
				return cli.Exit(err, 1)
			}
			script, perr := scnpack.Parse(data, quirks)
			if perr != nil {
				log.Error("error decoding script", "file", in, "err", perr)
			}
			out, err := editable.Marshal(script)
			if err != nil {
				return cli.Exit(err, 1)
			}
			outDir := c.Args().Get(1)
			if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
				return cli.Exit(err, 1)
			}
			name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".yaml"
			return writeFile(filepath.Join(outDir, name), out)
		},
	}
}

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "serialize an editable YAML form back into a binary script",
		ArgsUsage: "in out",
		Action: func(c *cli.Context) error {
			return withTwoFiles(c, func(data []byte) ([]byte, error) {
				script, err := editable.Unmarshal(data)
				if err != nil {
					return nil, err
				}
				return script.Emit()
			})
		},
	}
}

// directoryDoc is the on-disk index of script names written by unpack and
// read back by pack, mirroring the reference tool's directory.yaml (its
// DirEntry carries offset/size too, but both are marked skip_serializing
// there -- recomputed on pack, never round-tripped through the document).
type directoryDoc struct {
	Names []string `yaml:"names"`
}

func unpackCommand() *cli.Command {
	return &cli.Command{
		Name:      "unpack",
		Usage:     "decompress, split, and decode every script in an archive",
		ArgsUsage: "archive yaml-dir tl-dir",
		Flags:     []cli.Flag{quirksFlag()},
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 3 {
				return cli.Exit("Insufficient arguments", 1)
			}
			quirks, err := resolveQuirks(c)
			if err != nil {
				return err
			}
			archivePath, yamlDir, tlDir := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)

			raw, err := os.ReadFile(archivePath)
			if err != nil {
				return cli.Exit(err, 1)
			}
			decompressed, err := archive.Decompress(raw)
			if err != nil {
				return cli.Exit(err, 1)
			}

			decoded, err := archive.ParseArchive(decompressed, quirks, nil)
			if err != nil {
				return cli.Exit(err, 1)
			}

			if err := os.MkdirAll(yamlDir, os.ModePerm); err != nil {
				return cli.Exit(err, 1)
			}
			if err := os.MkdirAll(tlDir, os.ModePerm); err != nil {
				return cli.Exit(err, 1)
			}

			names := make([]string, len(decoded))
			for _, d := range decoded {
				names[d.Index] = d.Name
				yamlBytes, err := editable.Marshal(d.Script)
				if err != nil {
					log.Error("error serializing script to YAML", "script", d.Name, "err", err)
					continue
				}
				if err := os.WriteFile(filepath.Join(yamlDir, d.Name+".yaml"), yamlBytes, 0644); err != nil {
					log.Error("error writing YAML", "script", d.Name, "err", err)
				}
				tlText := tldoc.Transform(d.Script)
				if err := os.WriteFile(filepath.Join(tlDir, d.Name+".txt"), []byte(tlText), 0644); err != nil {
					log.Error("error writing TL document", "script", d.Name, "err", err)
				}
			}

			dirYAML, err := yaml.Marshal(directoryDoc{Names: names})
			if err != nil {
				return cli.Exit(err, 1)
			}
			return writeFile(filepath.Join(yamlDir, "directory.yaml"), dirYAML)
		},
	}
}

func packCommand() *cli.Command {
	return &cli.Command{
		Name:      "pack",
		Usage:     "re-apply translations and recombine scripts into an archive",
		ArgsUsage: "yaml-dir tl-dir out",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "compress"},
			&cli.BoolFlag{Name: "apply-text"},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 3 {
				return cli.Exit("Insufficient arguments", 1)
			}
			yamlDir, tlDir, out := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)

			dirBytes, err := os.ReadFile(filepath.Join(yamlDir, "directory.yaml"))
			if err != nil {
				return cli.Exit(err, 1)
			}
			var dir directoryDoc
			if err := yaml.Unmarshal(dirBytes, &dir); err != nil {
				return cli.Exit(err, 1)
			}

			scripts := make([]*scnpack.Script, len(dir.Names))
			for i, name := range dir.Names {
				yamlBytes, err := os.ReadFile(filepath.Join(yamlDir, name+".yaml"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				script, err := editable.Unmarshal(yamlBytes)
				if err != nil {
					return cli.Exit(fmt.Errorf("%s: %w", name, err), 1)
				}
				if c.Bool("apply-text") {
					tlBytes, err := os.ReadFile(filepath.Join(tlDir, name+".txt"))
					if err == nil {
						if err := tldoc.ReverseTransform(script, string(tlBytes)); err != nil {
							return cli.Exit(fmt.Errorf("%s: %w", name, err), 1)
						}
					}
				}
				scripts[i] = script
			}

			payload, err := archive.Recompile(dir.Names, scripts)
			if err != nil {
				return cli.Exit(err, 1)
			}
			if c.Bool("compress") {
				payload = archive.Compress(payload)
			}
			return writeFile(out, payload)
		},
	}
}

func transformCommand() *cli.Command {
	return &cli.Command{
		Name:      "transform",
		Usage:     "forward TL-document transform of one script's YAML form",
		ArgsUsage: "in.yaml out.txt",
		Action: func(c *cli.Context) error {
			return withTwoFiles(c, func(data []byte) ([]byte, error) {
				script, err := editable.Unmarshal(data)
				if err != nil {
					return nil, err
				}
				return []byte(tldoc.Transform(script)), nil
			})
		},
	}
}

func untransformCommand() *cli.Command {
	return &cli.Command{
		Name:      "untransform",
		Usage:     "reverse TL-document transform onto a script's YAML form",
		ArgsUsage: "in.yaml in.txt out.yaml",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 3 {
				return cli.Exit("Insufficient arguments", 1)
			}
			yamlBytes, err := os.ReadFile(c.Args().Get(0))
			if err != nil {
				return cli.Exit(err, 1)
			}
			tlBytes, err := os.ReadFile(c.Args().Get(1))
			if err != nil {
				return cli.Exit(err, 1)
			}
			script, err := editable.Unmarshal(yamlBytes)
			if err != nil {
				return cli.Exit(err, 1)
			}
			if err := tldoc.ReverseTransform(script, string(tlBytes)); err != nil {
				return cli.Exit(err, 1)
			}
			out, err := editable.Marshal(script)
			if err != nil {
				return cli.Exit(err, 1)
			}
			return writeFile(c.Args().Get(2), out)
		},
	}
}

func fixCommand() *cli.Command {
	return &cli.Command{
		Name:      "fix",
		Usage:     "word-wrap every line of a TL document",
		ArgsUsage: "in.txt out.txt",
		Action: func(c *cli.Context) error {
			return withTwoFiles(c, func(data []byte) ([]byte, error) {
				lines := strings.Split(string(data), "\n")
				for i, line := range lines {
					lines[i] = tldoc.FixLine(line)
				}
				return []byte(strings.Join(lines, "\n")), nil
			})
		},
	}
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}
