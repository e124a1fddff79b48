package client

import (
	"fmt"

	"github.com/anydict/numstore/rpc/common"
	"github.com/anydict/numstore/rpc/serializer"
	"github.com/anydict/numstore/rpc/transport"
)

var logger = common.GetLogger("rpc/client")

// invokeRPCRequest is the helper all client methods funnel through. It
// serializes the request, sends it to the given store ID and deserializes
// the response. Error responses are converted back into errors - typed
// store errors keep their code, so strict-mode violations look the same
// whether the store is local or remote.
func invokeRPCRequest(
	storeID uint64,
	req *common.Message,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*common.Message, error) {
	// Serialize the request
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	// Send the request
	respBytes, err := transport.Send(storeID, reqBytes)
	if err != nil {
		return nil, err
	}

	// Deserialize the response
	resp := &common.Message{}
	err = serializer.Deserialize(respBytes, resp)
	if err != nil {
		return nil, fmt.Errorf("rpc client - failed to deserialize response: %s", err)
	}

	// Check if the response is an error response
	if respErr := resp.GetError(); respErr != nil {
		return nil, respErr
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("rpc client - unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}

	// Return the response
	return resp, nil
}
