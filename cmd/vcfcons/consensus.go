package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vcflab/vcfcons/internal/consensus"
	"github.com/vcflab/vcfcons/internal/depth"
	"github.com/vcflab/vcfcons/internal/fasta"
	"github.com/vcflab/vcfcons/internal/pileup"
	"github.com/vcflab/vcfcons/internal/support"
	"github.com/vcflab/vcfcons/internal/vcf"
)

func newConsensusCmd() *cobra.Command {
	var (
		useVCFInfo bool
		vcfType    string
		newID      string
		renameFile string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "consensus <ref.fasta> <prefix>",
		Short: "Build the consensus sequence for one sample",
		Long: `Reads <prefix>.bam.depth, <prefix>.vcf and (unless --use-vcf-info is
set) <prefix>.bam.mpileup, and writes <prefix>.vcfcons.fasta,
<prefix>.vcfcons.frag.fasta and <prefix>.vcfcons.vcf.`,
		Example: `  vcfcons consensus wuhan.fasta LC0003335
  vcfcons consensus --use-vcf-info --vcf-type pbaa wuhan.fasta LC0003335
  vcfcons consensus -c 10 -f 0.8 wuhan.fasta LC0003335`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			th := support.Thresholds{
				MinCoverage: viper.GetInt("min_coverage"),
				MinAltFreq:  viper.GetFloat64("min_alt_freq"),
				MinQual:     viper.GetInt("min_qual"),
			}
			opts := consensusOptions{
				refFasta:   args[0],
				prefix:     args[1],
				thresholds: th,
				useVCFInfo: useVCFInfo,
				vcfType:    support.Schema(vcfType),
				newID:      newID,
				renameFile: renameFile,
			}

			logger := newLogger(verbose)
			defer logger.Sync()

			return runConsensus(opts, logger)
		},
	}

	flags := cmd.Flags()
	flags.IntP("min-coverage", "c", 4, "Minimum base coverage to call a base")
	flags.Float64P("min-alt-freq", "f", 0.5, "Minimum ALT frequency, fraction in (0,1]")
	flags.IntP("min-qual", "q", 100, "Minimum QUAL cutoff")
	flags.BoolVar(&useVCFInfo, "use-vcf-info", false, "Use VCF DP/AD annotations for read support instead of the pileup")
	flags.StringVar(&vcfType, "vcf-type", string(support.SchemaDeepVariant),
		"VCF annotation schema, one of: "+strings.Join(support.Schemas(), ", ")+" (only used with --use-vcf-info)")
	flags.StringVar(&newID, "id", "", "Output sequence identifier (default: <prefix>_VCFconsensus)")
	flags.StringVarP(&renameFile, "rename-file", "s", "", "Sequence ID rename file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	viper.BindPFlag("min_coverage", flags.Lookup("min-coverage"))
	viper.BindPFlag("min_alt_freq", flags.Lookup("min-alt-freq"))
	viper.BindPFlag("min_qual", flags.Lookup("min-qual"))

	return cmd
}

type consensusOptions struct {
	refFasta   string
	prefix     string
	thresholds support.Thresholds
	useVCFInfo bool
	vcfType    support.Schema
	newID      string
	renameFile string
}

// inputs derived from the sample prefix, following the upstream
// alignment pipeline's naming
func (o *consensusOptions) mpileupPath() string { return o.prefix + ".bam.mpileup" }
func (o *consensusOptions) depthPath() string   { return o.prefix + ".bam.depth" }
func (o *consensusOptions) vcfPath() string     { return o.prefix + ".vcf" }

func runConsensus(opts consensusOptions, logger *zap.Logger) error {
	// configuration and input errors are reported before any file is
	// processed
	if err := opts.thresholds.Validate(); err != nil {
		return err
	}

	var resolver support.Resolver
	if opts.useVCFInfo {
		r, err := support.NewSchemaResolver(opts.vcfType)
		if err != nil {
			return err
		}
		resolver = r
	}

	required := []string{opts.refFasta, opts.depthPath(), opts.vcfPath()}
	if !opts.useVCFInfo {
		required = append(required, opts.mpileupPath())
	}
	for _, path := range required {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("cannot find input file %s", path)
		}
	}

	ref, err := fasta.ReadSingle(opts.refFasta)
	if err != nil {
		return err
	}
	logger.Info("loaded reference",
		zap.String("id", ref.ID),
		zap.Int("length", len(ref.Seq)))

	depthTable, err := depth.Load(opts.depthPath())
	if err != nil {
		return err
	}

	if !opts.useVCFInfo {
		reader, err := pileup.NewReader(opts.mpileupPath())
		if err != nil {
			return err
		}
		table, err := reader.Index()
		reader.Close()
		if err != nil {
			return err
		}
		logger.Info("indexed pileup", zap.Int("positions", len(table)))
		resolver = &support.PileupResolver{Table: table}
	}

	builder := consensus.New(ref.Seq)
	builder.SetLogger(logger)
	builder.Mask(depthTable, opts.thresholds.MinCoverage)

	filter := support.NewFilter(resolver, opts.thresholds)
	filter.SetLogger(logger)

	parser, err := vcf.NewParser(opts.vcfPath())
	if err != nil {
		return err
	}
	defer parser.Close()

	vcfOut, err := os.Create(opts.prefix + ".vcfcons.vcf")
	if err != nil {
		return fmt.Errorf("create output vcf: %w", err)
	}
	defer vcfOut.Close()
	writer, err := vcf.NewWriter(vcfOut, parser.Header())
	if err != nil {
		return err
	}

	accepted := 0
	total := 0
	for {
		v, err := parser.Next()
		if err != nil {
			return err
		}
		if v == nil {
			break
		}
		total++
		if filter.Classify(v) != support.Accepted {
			continue
		}
		if err := writer.Write(v); err != nil {
			return err
		}
		builder.Apply(v)
		accepted++
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	logger.Info("applied variants", zap.Int("accepted", accepted), zap.Int("total", total))

	id := opts.newID
	if id == "" {
		id, err = resolveID(opts.renameFile, opts.prefix)
		if err != nil {
			return err
		}
	}

	if err := writeFasta(opts.prefix+".vcfcons.fasta", func(w *bufio.Writer) error {
		return fasta.WriteRecord(w, id, builder.Sequence())
	}); err != nil {
		return err
	}

	if err := writeFasta(opts.prefix+".vcfcons.frag.fasta", func(w *bufio.Writer) error {
		for _, frag := range builder.Fragments() {
			header := fmt.Sprintf("%s_frag%d", id, frag.Start1)
			if err := fasta.WriteRecord(w, header, frag.Seq); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	logger.Info("wrote consensus",
		zap.String("id", id),
		zap.Int("length", len(builder.Sequence())),
		zap.Int("fragments", len(builder.Fragments())))
	return nil
}

func writeFasta(path string, fill func(*bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		return err
	}
	return w.Flush()
}

// resolveID picks the output sequence identifier. A rename file maps
// submission names like "hCoV-19/USA/IA-CDC-LC0005111/2021" to sample
// prefixes via the last dash token of the second-to-last path segment.
func resolveID(renameFile, prefix string) (string, error) {
	if renameFile == "" {
		return prefix + "_VCFconsensus", nil
	}

	f, err := os.Open(renameFile)
	if err != nil {
		return "", fmt.Errorf("open rename file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		segs := strings.Split(line, "/")
		if len(segs) < 2 {
			continue
		}
		toks := strings.Split(segs[len(segs)-2], "-")
		if toks[len(toks)-1] == prefix {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read rename file: %w", err)
	}
	return prefix + "_VCFconsensus", nil
}
