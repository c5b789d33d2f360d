package inference

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Only the first call has
// any effect; later calls return the first call's error.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// onnxModel wraps a classifier exported to ONNX with a single float input of
// shape [N, dim] and a float probability output of shape [N, classes].
type onnxModel struct {
	mu         sync.Mutex
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	inputDim   int64
	classes    int64
}

func newONNXModel(modelPath, libPath string) (*onnxModel, error) {
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}

	input, err := pickInput(inputs)
	if err != nil {
		return nil, err
	}
	output, err := pickProbabilities(outputs)
	if err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(1)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{input.Name},
		[]string{output.Name},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &onnxModel{
		session:    session,
		inputName:  input.Name,
		outputName: output.Name,
		inputDim:   input.Dimensions[1],
		classes:    output.Dimensions[1],
	}, nil
}

// pickInput expects exactly one float tensor input of shape [batch, dim].
func pickInput(inputs []ort.InputOutputInfo) (ort.InputOutputInfo, error) {
	if len(inputs) != 1 {
		return ort.InputOutputInfo{}, fmt.Errorf("onnx: expected 1 model input, got %d", len(inputs))
	}
	in := inputs[0]
	if in.OrtValueType != ort.ONNXTypeTensor || in.DataType != ort.TensorElementDataTypeFloat {
		return ort.InputOutputInfo{}, fmt.Errorf("onnx: input %q must be a float tensor", in.Name)
	}
	if len(in.Dimensions) != 2 || in.Dimensions[1] <= 0 {
		return ort.InputOutputInfo{}, fmt.Errorf("onnx: input %q must have shape [N, dim], got %v", in.Name, in.Dimensions)
	}
	return in, nil
}

// pickProbabilities finds the [N, classes] float tensor output. Classifiers
// exported with a ZipMap produce a sequence of maps instead, which is rejected.
func pickProbabilities(outputs []ort.InputOutputInfo) (ort.InputOutputInfo, error) {
	for _, out := range outputs {
		if out.OrtValueType != ort.ONNXTypeTensor || out.DataType != ort.TensorElementDataTypeFloat {
			continue
		}
		if len(out.Dimensions) == 2 && (out.Dimensions[1] == 1 || out.Dimensions[1] == 2) {
			return out, nil
		}
	}
	return ort.InputOutputInfo{}, fmt.Errorf("onnx: no [N, 2] float probability output (export the classifier without ZipMap)")
}

func (m *onnxModel) InputDim() int {
	return int(m.inputDim)
}

// PredictProba runs a batch-of-one inference and returns the last class
// column (the positive class for binary classifiers).
func (m *onnxModel) PredictProba(vec []float64) (float64, error) {
	if int64(len(vec)) != m.inputDim {
		return 0, fmt.Errorf("onnx: input length %d != model input dim %d", len(vec), m.inputDim)
	}

	data := make([]float32, len(vec))
	for i, v := range vec {
		data[i] = float32(v)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tIn, err := ort.NewTensor(ort.NewShape(1, m.inputDim), data)
	if err != nil {
		return 0, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer tIn.Destroy()

	tOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, m.classes))
	if err != nil {
		return 0, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := m.session.Run([]ort.Value{tIn}, []ort.Value{tOut}); err != nil {
		return 0, fmt.Errorf("onnx: inference failed: %w", err)
	}

	probs := tOut.GetData()
	return float64(probs[len(probs)-1]), nil
}

// Close releases the ONNX session resources.
func (m *onnxModel) Close() error {
	return m.session.Destroy()
}
