package neural

// Architecture is one fixed network configuration of the architecture
// search.
type Architecture struct {
	Name         string
	LearningRate float64
	BatchSize    int
	Layers       func() []Layer
}

// Architectures returns the four candidate networks in evaluation order.
func Architectures() []Architecture {
	return []Architecture{
		{
			Name:         "Improved Sigmoid",
			LearningRate: 0.001,
			BatchSize:    32,
			Layers: func() []Layer {
				return []Layer{
					Dense(128, Sigmoid), Dropout(0.3),
					Dense(64, Sigmoid), Dropout(0.2),
					Dense(32, Sigmoid),
					Dense(1, Sigmoid),
				}
			},
		},
		{
			Name:         "RELU + BatchNorm",
			LearningRate: 0.001,
			BatchSize:    32,
			Layers: func() []Layer {
				return []Layer{
					Dense(128, ReLU), BatchNormalization(), Dropout(0.3),
					Dense(64, ReLU), BatchNormalization(), Dropout(0.2),
					Dense(32, ReLU),
					Dense(1, Sigmoid),
				}
			},
		},
		{
			Name:         "Leaky RELU",
			LearningRate: 0.001,
			BatchSize:    32,
			Layers: func() []Layer {
				return []Layer{
					Dense(128, Linear), LeakyReLU(0.1), BatchNormalization(), Dropout(0.3),
					Dense(64, Linear), LeakyReLU(0.1), BatchNormalization(), Dropout(0.2),
					Dense(32, Linear), LeakyReLU(0.1),
					Dense(1, Sigmoid),
				}
			},
		},
		{
			Name:         "Deep Network",
			LearningRate: 0.0005,
			BatchSize:    64,
			Layers: func() []Layer {
				return []Layer{
					Dense(256, ReLU), BatchNormalization(), Dropout(0.4),
					Dense(128, ReLU), BatchNormalization(), Dropout(0.3),
					Dense(64, ReLU), BatchNormalization(), Dropout(0.2),
					Dense(32, ReLU),
					Dense(1, Sigmoid),
				}
			},
		},
	}
}

// New builds an untrained model of this architecture, compiled with Adam.
func (a Architecture) New(inputDim int, opts ...SequentialOption) (*Sequential, error) {
	m := NewSequential(a.Layers(), opts...)
	if err := m.Build(inputDim); err != nil {
		return nil, err
	}
	m.Compile(Adam(a.LearningRate))
	return m, nil
}
