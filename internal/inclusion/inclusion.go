// inclusion.go - Cross-transition bookkeeping for inclusion proofs.
//
// The tracker ingests the transitions of one transaction in execution order.
// Each record-typed input is classified as locally produced (its commitment
// was an output of an earlier transition in the same transaction) or globally
// committed (it must be proven against the ledger's persisted state tree).
// Insertion order is a hard precondition: the output-commitment index only
// holds commitments observed so far, which is exactly what makes the is_local
// classification correct.

package inclusion

import (
	"fmt"

	"github.com/Zibelmann/snarkVM/internal/merkle"
	"github.com/Zibelmann/snarkVM/internal/network"
	"github.com/Zibelmann/snarkVM/internal/process"
)

// InputTask records everything needed to prove one record input's inclusion.
// Created per record input during ingestion, never mutated after creation.
type InputTask struct {
	Commitment   network.Field
	Gamma        network.Group
	SerialNumber network.Field
	IsLocal      bool
}

// outputLocation is where a commitment was produced: the transition and the
// absolute leaf index (inputs and outputs share one index space).
type outputLocation struct {
	transitionID network.Field
	index        uint8
}

// Inclusion tracks the record inputs and output commitments of one
// transaction. Instances are independent; calls on one instance must be
// serialized in transaction order.
type Inclusion struct {
	inputTasks        map[network.Field][]InputTask
	taskOrder         []network.Field
	outputCommitments map[network.Field]outputLocation
}

// New returns an empty tracker.
func New() *Inclusion {
	return &Inclusion{
		inputTasks:        make(map[network.Field][]InputTask),
		outputCommitments: make(map[network.Field]outputLocation),
	}
}

// InsertTransition ingests one transition. The input ids must correspond
// one-to-one with the transition's inputs.
func (in *Inclusion) InsertTransition(inputIDs []process.InputID, transition *process.Transition) error {
	if len(inputIDs) != len(transition.Inputs) {
		return fmt.Errorf("%w: expected the same number of input IDs (%d) as transition inputs (%d)",
			network.ErrMalformedInput, len(inputIDs), len(transition.Inputs))
	}

	in.taskOrder = append(in.taskOrder, transition.ID)

	// Record inputs become input tasks. is_local probes the index of output
	// commitments observed so far, so it is false until a matching output has
	// actually appeared earlier in program order.
	for _, inputID := range inputIDs {
		if inputID.Kind != process.RecordID {
			continue
		}
		_, isLocal := in.outputCommitments[inputID.Commitment]
		in.inputTasks[transition.ID] = append(in.inputTasks[transition.ID], InputTask{
			Commitment:   inputID.Commitment,
			Gamma:        inputID.Gamma,
			SerialNumber: inputID.SerialNumber,
			IsLocal:      isLocal,
		})
	}

	// Record outputs extend the commitment index at their absolute leaf index.
	for index, output := range transition.Outputs {
		if output.Kind != process.OutputRecord {
			continue
		}
		in.outputCommitments[output.ID] = outputLocation{
			transitionID: transition.ID,
			index:        uint8(len(inputIDs) + index),
		}
	}

	return nil
}

// Tasks returns the input tasks recorded for a transition, in input order.
func (in *Inclusion) Tasks(transitionID network.Field) []InputTask {
	return in.inputTasks[transitionID]
}

// IsLocal reports whether a commitment has been observed as an output of an
// already-inserted transition.
func (in *Inclusion) IsLocal(commitment network.Field) bool {
	_, ok := in.outputCommitments[commitment]
	return ok
}

// PrepareVerifierInputs returns the public-input rows for the verifier: for
// each record input, in transition order, the row
// [1, global_state_root, local_state_root, serial_number], where the local
// root reflects only the transitions processed before that point. A
// transaction must either consume no records or reference a genuinely
// initialized global state root.
func PrepareVerifierInputs(globalStateRoot network.Field, transitions []*process.Transition) ([][]network.Field, error) {
	transactionTree := merkle.New(network.TransactionDepth)
	var batchVerifierInputs [][]network.Field

	for index, transition := range transitions {
		localStateRoot := transactionTree.Root()
		for _, input := range transition.Inputs {
			if input.Kind != process.InputRecord {
				continue
			}
			var one network.Field
			one.SetOne()
			batchVerifierInputs = append(batchVerifierInputs, []network.Field{
				one, globalStateRoot, localStateRoot, input.ID,
			})
		}
		// The last transition's id never enters the tree: nothing after it
		// can reference it locally.
		if index+1 != len(transitions) {
			if err := transactionTree.Append(transition.ID); err != nil {
				return nil, err
			}
		}
	}

	if len(batchVerifierInputs) == 0 && globalStateRoot.IsZero() {
		return nil, fmt.Errorf("%w: expected the global state root in the execution to not be zero",
			network.ErrProofInput)
	}
	return batchVerifierInputs, nil
}

// Prepare resolves every recorded input task into an inclusion assignment.
// The transitions must be exactly the inserted ones in insertion order, so
// local commitments resolve against the producing transition's position in
// the transaction tree.
func (in *Inclusion) Prepare(query Query, transitions []*process.Transition) ([]InclusionAssignment, error) {
	if len(transitions) != len(in.taskOrder) {
		return nil, fmt.Errorf("%w: expected the %d inserted transitions, got %d",
			network.ErrMalformedInput, len(in.taskOrder), len(transitions))
	}
	for i, transition := range transitions {
		if !transition.ID.Equal(&in.taskOrder[i]) {
			return nil, fmt.Errorf("%w: transition %s at position %d does not match the insertion order",
				network.ErrMalformedInput, transition.ID.String(), i)
		}
	}

	globalStateRoot, err := query.StateRoot()
	if err != nil {
		return nil, fmt.Errorf("resolve global state root: %w", err)
	}

	transactionTree := merkle.New(network.TransactionDepth)
	positions := make(map[network.Field]int, len(transitions))
	leafTrees := make(map[network.Field]*merkle.Tree, len(transitions))

	var assignments []InclusionAssignment
	for index, transition := range transitions {
		localStateRoot := transactionTree.Root()

		for _, task := range in.inputTasks[transition.ID] {
			var statePath merkle.StatePath
			switch {
			case task.IsLocal:
				statePath, err = in.localStatePath(task, transactionTree, positions, leafTrees)
				if err != nil {
					return nil, err
				}
			default:
				statePath, err = query.StatePath(task.Commitment)
				if err != nil {
					return nil, fmt.Errorf("resolve state path for commitment %s: %w", task.Commitment.String(), err)
				}
			}
			assignments = append(assignments, InclusionAssignment{
				StatePath:       statePath,
				Commitment:      task.Commitment,
				Gamma:           task.Gamma,
				SerialNumber:    task.SerialNumber,
				GlobalStateRoot: globalStateRoot,
				LocalStateRoot:  localStateRoot,
				IsGlobal:        !task.IsLocal,
			})
		}

		if index+1 != len(transitions) {
			positions[transition.ID] = transactionTree.Size()
			if err := transactionTree.Append(transition.ID); err != nil {
				return nil, err
			}
			tree, err := transition.LeafTree()
			if err != nil {
				return nil, err
			}
			leafTrees[transition.ID] = tree
		}
	}

	if len(assignments) == 0 && globalStateRoot.IsZero() {
		return nil, fmt.Errorf("%w: expected the global state root in the execution to not be zero",
			network.ErrProofInput)
	}
	return assignments, nil
}

// localStatePath joins the producing transition's leaf-tree path with the
// transaction-tree path of the producer, proving the commitment against the
// partial transaction root visible at the consuming point.
func (in *Inclusion) localStatePath(
	task InputTask,
	transactionTree *merkle.Tree,
	positions map[network.Field]int,
	leafTrees map[network.Field]*merkle.Tree,
) (merkle.StatePath, error) {
	location, ok := in.outputCommitments[task.Commitment]
	if !ok {
		return merkle.StatePath{}, fmt.Errorf("%w: local commitment %s has no recorded producer",
			network.ErrProofInput, task.Commitment.String())
	}
	position, ok := positions[location.transitionID]
	if !ok {
		return merkle.StatePath{}, fmt.Errorf("%w: producing transition of commitment %s is not in the transaction tree",
			network.ErrProofInput, task.Commitment.String())
	}
	lower, err := leafTrees[location.transitionID].Prove(uint64(location.index))
	if err != nil {
		return merkle.StatePath{}, err
	}
	upper, err := transactionTree.Prove(uint64(position))
	if err != nil {
		return merkle.StatePath{}, err
	}
	return merkle.Join(lower, upper)
}
