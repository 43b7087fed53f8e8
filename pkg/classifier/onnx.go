package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/JaimeStill/verdict/pkg/lifecycle"
	"github.com/JaimeStill/verdict/pkg/storage"
)

// onnxClassifier runs a sequence-classification model in-process.
// The session and tokenizer are not reentrant; mu serializes every call.
type onnxClassifier struct {
	cfg    ONNXConfig
	labels []string
	store  storage.System
	logger *slog.Logger

	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	tokenizer *tokenizer.Tokenizer
}

func newONNX(cfg *Config, store storage.System, logger *slog.Logger) *onnxClassifier {
	return &onnxClassifier{
		cfg:    cfg.ONNX,
		labels: cfg.Labels,
		store:  store,
		logger: logger,
	}
}

func (o *onnxClassifier) Name() string {
	return ProviderONNX
}

// Start registers a startup hook that fetches any remote artifacts and loads
// the model. Classify returns ErrNotReady until the hook succeeds.
func (o *onnxClassifier) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup("classifier", func(ctx context.Context) error {
		if err := o.fetchArtifacts(ctx); err != nil {
			o.logger.Error("artifact fetch failed", "error", err)
			return err
		}
		if err := o.load(); err != nil {
			o.logger.Error("model load failed", "error", err)
			return err
		}
		o.logger.Info("model loaded", "model", o.cfg.ModelPath, "labels", o.labels)
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := o.Close(); err != nil {
			o.logger.Error("classifier close failed", "error", err)
		}
	})

	return nil
}

func (o *onnxClassifier) fetchArtifacts(ctx context.Context) error {
	if o.cfg.ModelKey == "" && o.cfg.TokenizerKey == "" {
		return nil
	}
	if o.store == nil {
		return fmt.Errorf("artifact keys configured without blob storage")
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, a := range [...]struct{ key, dest string }{
		{o.cfg.ModelKey, o.cfg.ModelPath},
		{o.cfg.TokenizerKey, o.cfg.TokenizerPath},
	} {
		if a.key == "" {
			continue
		}
		g.Go(func() error {
			return o.store.Fetch(ctx, a.key, a.dest)
		})
	}
	return g.Wait()
}

func (o *onnxClassifier) load() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(o.cfg.LibraryPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	tk, err := pretrained.FromFile(o.cfg.TokenizerPath)
	if err != nil {
		return fmt.Errorf("load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		o.cfg.ModelPath,
		o.cfg.InputNames,
		[]string{o.cfg.OutputName},
		nil,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	o.tokenizer = tk
	o.session = session
	return nil
}

func (o *onnxClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return Prediction{}, ErrNotReady
	}

	enc, err := o.tokenizer.EncodeSingle(norm.NFKC.String(text), true)
	if err != nil {
		return Prediction{}, fmt.Errorf("tokenize: %w", err)
	}

	features := map[string][]int{
		"input_ids":      enc.Ids,
		"attention_mask": enc.AttentionMask,
		"token_type_ids": enc.TypeIds,
	}

	inputs := make([]ort.Value, 0, len(o.cfg.InputNames))
	defer func() {
		for _, v := range inputs {
			v.Destroy()
		}
	}()

	for _, name := range o.cfg.InputNames {
		values, ok := features[name]
		if !ok {
			return Prediction{}, fmt.Errorf("unsupported model input %q", name)
		}
		tensor, err := int64Tensor(truncate(values, o.cfg.MaxSeqLen))
		if err != nil {
			return Prediction{}, fmt.Errorf("input %s: %w", name, err)
		}
		inputs = append(inputs, tensor)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(o.labels))))
	if err != nil {
		return Prediction{}, fmt.Errorf("allocate output: %w", err)
	}
	defer output.Destroy()

	if err := o.session.Run(inputs, []ort.Value{output}); err != nil {
		return Prediction{}, fmt.Errorf("run session: %w", err)
	}

	return FromLogits(output.GetData(), o.labels)
}

func (o *onnxClassifier) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return nil
	}

	err := o.session.Destroy()
	o.session = nil
	o.tokenizer = nil

	if derr := ort.DestroyEnvironment(); err == nil {
		err = derr
	}
	return err
}

// truncate keeps the leading tokens up to limit with the final separator token
// moved into the last position.
func truncate(values []int, limit int) []int {
	if len(values) <= limit {
		return values
	}
	out := make([]int, limit)
	copy(out, values[:limit-1])
	out[limit-1] = values[len(values)-1]
	return out
}

func int64Tensor(values []int) (*ort.Tensor[int64], error) {
	data := make([]int64, len(values))
	for i, v := range values {
		data[i] = int64(v)
	}
	return ort.NewTensor(ort.NewShape(1, int64(len(data))), data)
}
